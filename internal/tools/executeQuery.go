package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/logger"
)

type ExecuteQueryInput struct {
	Query  string         `json:"query" jsonschema:"required" jsonschema_description:"SQL statement to execute"`
	Params map[string]any `json:"params,omitempty" jsonschema_description:"Named bind parameters, e.g. {\"id\": 123} for 'WHERE id = :id'"`
}

func GetExecuteQueryTool(deps *Deps) *ToolDefinition[ExecuteQueryInput, TextOutput] {
	return NewToolDefinition[ExecuteQueryInput, TextOutput](
		"execute_query",
		executeQueryDescription(deps),
		func(ctx context.Context, req *mcp.CallToolRequest, input ExecuteQueryInput) (*mcp.CallToolResult, TextOutput, error) {
			return executeQueryHandler(ctx, input, deps)
		},
	)
}

func executeQueryDescription(deps *Deps) string {
	parts := []string{
		fmt.Sprintf("Execute a SQL query and return results in a readable format. Results will be truncated after %d characters.", deps.Formatter.MaxChars),
	}
	if deps.Formatter.SpillDir != "" {
		parts = append(parts, "The full result set is saved to a local file referenced in the output.")
	}
	parts = append(parts,
		"IMPORTANT: You MUST use the params parameter for query parameter substitution (e.g. 'WHERE id = :id' with params={\"id\": 123}) to prevent SQL injection. Direct string concatenation is a serious security risk.",
		deps.DBInfo,
	)
	return strings.Join(parts, " ")
}

func executeQueryHandler(ctx context.Context, input ExecuteQueryInput, deps *Deps) (*mcp.CallToolResult, TextOutput, error) {
	requestID := uuid.NewString()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := deps.Client.Ensure(ctx); err != nil {
		logger.LogToolCall("execute_query", requestID, time.Since(started), err)
		return nil, TextOutput{}, err
	}

	result, err := deps.Executor.Execute(ctx, input.Query, input.Params)
	logger.LogToolCall("execute_query", requestID, time.Since(started), err)
	if err != nil {
		// Execution errors go back in-band with the driver's message so the
		// model can correct the statement, not as protocol failures.
		text := "Error: " + err.Error()
		return textResult(text), TextOutput{Text: text}, nil
	}

	text, err := deps.Formatter.Format(result)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return textResult(text), TextOutput{Text: text}, nil
}
