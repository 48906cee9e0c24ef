package mcpsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/quickwit-mcp/internal/config"
	"github.com/usestring/quickwit-mcp/internal/logging"
	"github.com/usestring/quickwit-mcp/internal/mcp"
	"github.com/usestring/quickwit-mcp/internal/mcp/tools"
	"github.com/usestring/quickwit-mcp/internal/metrics"
	"github.com/usestring/quickwit-mcp/pkg/client"
)

const shutdownTimeout = 5 * time.Second

// Server is the Quickwit console MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	metrics    *metrics.Metrics
	httpAddr   string
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin Quickwit tools.
//
// If c is nil a client is built from the configuration, with backend calls
// recorded in the server's metrics. Use functional options to configure
// logging, the transport, add custom tools, etc.
func NewServer(c *client.Client, opts ...Option) (*Server, error) {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.config == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.config = loaded
	}
	if cfg.logLevel != "" {
		cfg.config.LogLevel = cfg.logLevel
	}
	if cfg.logFile != "" {
		cfg.config.LogFile = cfg.logFile
	}
	if cfg.httpAddr != "" {
		cfg.config.HTTPAddr = cfg.httpAddr
	}
	if cfg.disableMetrics {
		cfg.config.MetricsEnabled = false
	}

	logCleanup, err := logging.Setup(logging.FromConfig(cfg.config))
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	m := cfg.metrics
	if m == nil && cfg.config.MetricsEnabled {
		m = metrics.New()
	}

	if c == nil {
		httpClient := cfg.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.config.HTTPClientTimeout}
		}
		clientOpts := []client.Option{
			client.WithBaseURL(cfg.config.BackendURL),
			client.WithHTTPClient(httpClient),
		}
		if m != nil {
			clientOpts = append(clientOpts, client.WithObserver(m))
		}
		c = client.New(clientOpts...)
	}

	var depsOpts []tools.DepsOption
	if m != nil {
		depsOpts = append(depsOpts,
			tools.WithCacheRecorder(m),
			tools.WithSessionGauge(m.SetEditorSessions),
		)
	}
	deps := tools.NewDeps(c, cfg.config, depsOpts...)

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(deps, internalOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		metrics:    m,
		httpAddr:   cfg.config.HTTPAddr,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server. It serves stdio unless an HTTP address is
// configured. The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.httpAddr == "" {
		return s.internal.Run(ctx)
	}

	srv := &http.Server{
		Addr:              s.httpAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving MCP over HTTP", slog.String("addr", s.httpAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// Handler returns the HTTP handler serving /mcp and, when metrics are
// enabled, /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.internal.HTTPHandler())
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
