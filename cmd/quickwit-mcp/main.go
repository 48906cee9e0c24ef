package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/quickwit-mcp/internal/config"
	"github.com/usestring/quickwit-mcp/internal/metrics"
	"github.com/usestring/quickwit-mcp/pkg/client"
	"github.com/usestring/quickwit-mcp/pkg/mcpsrv"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from the file named by QW_CONSOLE_CONFIG (if
	// set) and then from environment variables:
	// - QW_BACKEND_URL: Quickwit REST API base URL (default http://localhost:7280)
	// - LOG_LEVEL: debug, info, warn, error (default: info)
	// - LOG_FILE: path to log file (default: stderr only)
	// - MCP_HTTP_ADDR: serve streamable HTTP on this address instead of stdio
	// - etc. (see internal/config for all options)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Backend calls are recorded in the same registry the server exposes
	var opts []mcpsrv.Option
	clientOpts := []client.Option{
		client.WithBaseURL(cfg.BackendURL),
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}),
	}
	if cfg.MetricsEnabled {
		m := metrics.New()
		clientOpts = append(clientOpts, client.WithObserver(m))
		opts = append(opts, mcpsrv.WithMetrics(m))
	}
	opts = append(opts, mcpsrv.WithConfig(cfg))

	server, err := mcpsrv.NewServer(client.New(clientOpts...), opts...)
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	if cfg.HTTPAddr != "" {
		slog.Info("starting Quickwit MCP server", "transport", "http", "addr", cfg.HTTPAddr, "backend", cfg.BackendURL)
	} else {
		slog.Info("starting Quickwit MCP server", "transport", "stdio", "backend", cfg.BackendURL)
	}
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
