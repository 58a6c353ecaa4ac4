package tools

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/logger"
	"sqlbridge-mcp/internal/schema"
)

type SchemaDefinitionsInput struct {
	TableNames []string `json:"table_names" jsonschema:"required" jsonschema_description:"Names of the tables to describe"`
}

func GetSchemaDefinitionsTool(deps *Deps) *ToolDefinition[SchemaDefinitionsInput, TextOutput] {
	return NewToolDefinition[SchemaDefinitionsInput, TextOutput](
		"schema_definitions",
		"Returns schema and relation information for the given tables. "+deps.DBInfo,
		func(ctx context.Context, req *mcp.CallToolRequest, input SchemaDefinitionsInput) (*mcp.CallToolResult, TextOutput, error) {
			return schemaDefinitionsHandler(ctx, input, deps)
		},
	)
}

func schemaDefinitionsHandler(ctx context.Context, input SchemaDefinitionsInput, deps *Deps) (*mcp.CallToolResult, TextOutput, error) {
	requestID := uuid.NewString()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	if err := deps.Client.Ensure(ctx); err != nil {
		logger.LogToolCall("schema_definitions", requestID, time.Since(started), err)
		return nil, TextOutput{}, err
	}

	descriptors, unknown, err := deps.Introspector.Describe(ctx, input.TableNames)
	logger.LogToolCall("schema_definitions", requestID, time.Since(started), err)
	if err != nil {
		return nil, TextOutput{}, err
	}

	// Known tables render normally; unknown ones are reported alongside,
	// one line each, without failing the batch.
	var sections []string
	if len(descriptors) > 0 {
		sections = append(sections, schema.Render(descriptors))
	}
	for _, u := range unknown {
		sections = append(sections, "Error: "+u.Error())
	}

	text := strings.Join(sections, "\n")
	return textResult(text), TextOutput{Text: text}, nil
}
