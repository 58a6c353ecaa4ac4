package tools

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/logger"
)

type FilterTableNamesInput struct {
	Q string `json:"q" jsonschema:"required" jsonschema_description:"Substring to match against table names (case-insensitive)"`
}

func GetFilterTableNamesTool(deps *Deps) *ToolDefinition[FilterTableNamesInput, TextOutput] {
	return NewToolDefinition[FilterTableNamesInput, TextOutput](
		"filter_table_names",
		"Return all table names in the database containing the substring 'q' separated by comma. "+deps.DBInfo,
		func(ctx context.Context, req *mcp.CallToolRequest, input FilterTableNamesInput) (*mcp.CallToolResult, TextOutput, error) {
			return filterTableNamesHandler(ctx, input, deps)
		},
	)
}

func filterTableNamesHandler(ctx context.Context, input FilterTableNamesInput, deps *Deps) (*mcp.CallToolResult, TextOutput, error) {
	requestID := uuid.NewString()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	if err := deps.Client.Ensure(ctx); err != nil {
		logger.LogToolCall("filter_table_names", requestID, time.Since(started), err)
		return nil, TextOutput{}, err
	}

	names, err := deps.Introspector.FilterTables(ctx, input.Q)
	logger.LogToolCall("filter_table_names", requestID, time.Since(started), err)
	if err != nil {
		return nil, TextOutput{}, err
	}

	text := strings.Join(names, ", ")
	return textResult(text), TextOutput{Text: text}, nil
}
