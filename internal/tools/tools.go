package tools

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/client"
	"sqlbridge-mcp/internal/query"
	"sqlbridge-mcp/internal/schema"
)

const (
	metadataTimeout = 10 * time.Second
	queryTimeout    = 30 * time.Second
)

// Deps carries the wired components into the tool handlers.
type Deps struct {
	Client       *client.DBClient
	Introspector *schema.Introspector
	Executor     *query.Executor
	Formatter    *query.Formatter

	// DBInfo is the startup connection banner embedded in descriptions.
	DBInfo string
}

// TextOutput is the typed output shared by all tools; each returns plain text.
type TextOutput struct {
	Text string `json:"text" jsonschema_description:"Plain text result"`
}

func RegisterTools(s *mcp.Server, deps *Deps) {
	GetAllTableNamesTool(deps).Register(s)
	GetFilterTableNamesTool(deps).Register(s)
	GetSchemaDefinitionsTool(deps).Register(s)
	GetExecuteQueryTool(deps).Register(s)
}
