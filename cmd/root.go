package main

import (
	"os"

	"github.com/spf13/cobra"

	"sqlbridge-mcp/internal/config"
	"sqlbridge-mcp/internal/logger"
	"sqlbridge-mcp/internal/server"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "sqlbridge-mcp",
	Short: "MCP server exposing relational databases to AI clients",
	Long: `A Model Context Protocol (MCP) server for Postgres and MySQL.

Configuration comes from the environment: DB_URL is required and may carry
the AZURE_TOKEN marker in its password segment to authenticate every new
connection with a fresh Azure AD access token (via the Azure CLI).`,
}

// Execute runs the CLI. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	stdioCmd := &cobra.Command{
		Use:   "stdio",
		Short: "Run over stdio transport (for local MCP clients)",
		RunE:  runStdio,
	}
	rootCmd.AddCommand(stdioCmd)
}

func runStdio(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Initialize(logger.FromLoggingConfig(cfg.Logging)); err != nil {
		return err
	}
	defer logger.Shutdown()

	return server.RunStdio(cfg, version)
}
