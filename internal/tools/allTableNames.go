package tools

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/logger"
)

type AllTableNamesInput struct{}

func GetAllTableNamesTool(deps *Deps) *ToolDefinition[AllTableNamesInput, TextOutput] {
	return NewToolDefinition[AllTableNamesInput, TextOutput](
		"all_table_names",
		"Return all table names in the database separated by comma. "+deps.DBInfo,
		func(ctx context.Context, req *mcp.CallToolRequest, input AllTableNamesInput) (*mcp.CallToolResult, TextOutput, error) {
			return allTableNamesHandler(ctx, input, deps)
		},
	)
}

func allTableNamesHandler(ctx context.Context, _ AllTableNamesInput, deps *Deps) (*mcp.CallToolResult, TextOutput, error) {
	requestID := uuid.NewString()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	if err := deps.Client.Ensure(ctx); err != nil {
		logger.LogToolCall("all_table_names", requestID, time.Since(started), err)
		return nil, TextOutput{}, err
	}

	names, err := deps.Introspector.ListTables(ctx)
	logger.LogToolCall("all_table_names", requestID, time.Since(started), err)
	if err != nil {
		return nil, TextOutput{}, err
	}

	text := strings.Join(names, ", ")
	return textResult(text), TextOutput{Text: text}, nil
}
