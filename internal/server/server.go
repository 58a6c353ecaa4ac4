package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sqlbridge-mcp/internal/auth"
	"sqlbridge-mcp/internal/client"
	"sqlbridge-mcp/internal/config"
	"sqlbridge-mcp/internal/logger"
	"sqlbridge-mcp/internal/query"
	"sqlbridge-mcp/internal/schema"
	"sqlbridge-mcp/internal/tools"
)

// RunStdio wires everything together and serves MCP over stdin/stdout
// until the client disconnects or the process is signalled.
func RunStdio(cfg *config.Config, version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.ValidateMarkerPlacement(cfg.DatabaseURL); err != nil {
		return err
	}

	// The token cache is only built when the connection string asks for
	// substitution; a plain password never touches the identity CLI.
	var tokens client.TokenSource
	if strings.Contains(cfg.DatabaseURL, client.TokenMarker) {
		cred, err := auth.NewAzureCredential()
		if err != nil {
			return fmt.Errorf("init credential: %w", err)
		}
		cache := auth.NewTokenCache(cred)
		tokens = cache
		logger.Info("token substitution enabled", "credential", cred.String())
	}

	dbClient, err := client.NewDBClient(ctx, cfg.DatabaseURL, client.NewResolver(tokens), cfg.Engine)
	if err != nil {
		return fmt.Errorf("init DB client: %w", err)
	}
	defer dbClient.Close()

	dbInfo, err := dbClient.Info(ctx)
	if err != nil {
		logger.Warn("could not build connection banner", "error", err.Error())
		dbInfo = fmt.Sprintf("Connected to %s.", dbClient.Dialect())
	}
	logger.Info("database connected", "info", dbInfo)

	catalog, err := schema.NewCatalogReader(dbClient.Dialect(), dbClient)
	if err != nil {
		return err
	}

	deps := &tools.Deps{
		Client:       dbClient,
		Introspector: schema.NewIntrospector(catalog),
		Executor:     query.NewExecutor(dbClient),
		Formatter: &query.Formatter{
			MaxChars: cfg.MaxChars,
			SpillDir: cfg.LocalFilesPath,
		},
		DBInfo: dbInfo,
	}

	impl := &mcp.Implementation{Name: "sqlbridge-mcp", Version: version}
	srv := mcp.NewServer(impl, nil)
	tools.RegisterTools(srv, deps)

	logger.Info("MCP server running", "version", version, "dialect", dbClient.Dialect())
	return srv.Run(ctx, &mcp.StdioTransport{})
}
