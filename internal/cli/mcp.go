package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tillerhq/tiller/internal/config"
	"github.com/tillerhq/tiller/internal/logging"
	"github.com/tillerhq/tiller/pkg/adapters/mcp"
)

// MCPOptions contains the configuration for the mcp command.
type MCPOptions struct {
	ConfigPath string
	Transport  string // "stdio" or "sse"
	Port       int
}

// RunMCP starts the engine as a Model Context Protocol server.
func RunMCP(opts MCPOptions) error {
	// Logs must stay off Stdout: stdio transport speaks JSON-RPC there.
	logger := logging.New(slog.LevelInfo)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	sessions, err := setupPersistence(cfg.Store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := createEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(engine, sessions)

	switch opts.Transport {
	case "stdio":
		log.SetOutput(os.Stderr)
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && err != http.ErrServerClosed {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", opts.Transport)
	}
}
