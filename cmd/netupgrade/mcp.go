package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/Tython3/netupgrade/internal/config"
	"github.com/Tython3/netupgrade/internal/mcp"
)

// mcpCommand returns the mcp command
func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Serve the upgrader over the Model Context Protocol on stdio",
		Action: runMCP,
	}
}

func runMCP(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLogLevel(c, cfg)

	// The project root arrives per tool call, so only the credentials
	// need to be present up front.
	if cfg.APIKey == "" {
		return fmt.Errorf("an API key is required (set NETUPGRADE_API_KEY or OPENAI_API_KEY)")
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	log.Info().Str("version", version).Str("model", cfg.Model).Msg("MCP server starting on stdio")
	return server.Serve()
}
