// Package mcp exposes the upgrader over the Model Context Protocol so
// agent frontends can trigger upgrade runs. Stdout carries the protocol;
// all logging goes to stderr.
package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/Tython3/netupgrade/internal/config"
	"github.com/Tython3/netupgrade/internal/llm"
	"github.com/Tython3/netupgrade/internal/report"
	"github.com/Tython3/netupgrade/internal/upgrader"
)

const (
	// ServerName is the MCP server name.
	ServerName = "netupgrade"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp   *server.MCPServer
	cfg   *config.Config
	store report.Store
	up    *upgrader.Upgrader
}

// NewServer creates an MCP server backed by the given configuration. The
// completion client and run journal are created once and shared across
// tool invocations.
func NewServer(cfg *config.Config) (*Server, error) {
	client, err := llm.NewOpenAIClient(llm.Options{
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		CacheSize: cfg.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}

	var store report.Store
	if dbPath, err := cfg.ReportDBPath(); err == nil {
		if s, err := report.NewSQLiteStore(dbPath); err == nil {
			store = s
		} else {
			log.Warn().Err(err).Msg("run journal unavailable")
		}
	}

	s := &Server{
		mcp:   server.NewMCPServer(ServerName, ServerVersion),
		cfg:   cfg,
		store: store,
		up:    upgrader.New(client, store),
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve() error {
	defer func() {
		if s.store != nil {
			_ = s.store.Close()
		}
	}()
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(upgradeProjectTool(), s.handleUpgradeProject)
	s.mcp.AddTool(listRunsTool(), s.handleListRuns)
}
