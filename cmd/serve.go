package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/server"
)

// Transport names.
const (
	transportStdio = "stdio"
	transportHTTP  = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	transport          string
	port               string
	sessionIdleTimeout time.Duration
	metrics            MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server.

Supports two transport types:
  - streamable-http: Streamable HTTP at /mcp on PORT (default 3000)
  - stdio: Standard input/output, also selected by STDIO=1

Gmail:
  The server reads the OAuth token from TOKEN_PATH (default token.json).
  Without one, call the gmail-auth tool or run 'mcptools auth' with the
  OAuth client file at CREDENTIALS_PATH (default credentials.json).

Weather:
  Set TOMORROW_API_KEY to enable the weather-forecast tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("transport") && os.Getenv("STDIO") == "1" {
				opts.transport = transportStdio
			}
			if !cmd.Flags().Changed("port") {
				opts.port = envString("PORT", opts.port)
			}
			if !cmd.Flags().Changed("metrics-addr") {
				opts.metrics.Addr = envString("METRICS_ADDR", opts.metrics.Addr)
			}
			if !cmd.Flags().Changed("metrics-enabled") {
				enabled, err := envBool("METRICS_ENABLED", opts.metrics.Enabled)
				if err != nil {
					return err
				}
				opts.metrics.Enabled = enabled
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportHTTP, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.port, "port", "3000", "HTTP port (for streamable-http transport). Can also use PORT env var.")
	cmd.Flags().DurationVar(&opts.sessionIdleTimeout, "session-idle-timeout", server.DefaultSessionIdleTimeout, "Evict HTTP sessions idle for this long")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.DefaultLogger()

	gmailOpts, err := loadGmailOptions()
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	serverContext := server.NewServerContext(shutdownCtx, server.Config{
		Authorizer:  google.NewAuthorizer(googleConfig(false, logger, metrics)),
		Weather:     weatherClient(logging.NewSlogAdapter(logging.WithService(slog.Default(), "tomorrow")), metrics),
		Gmail:       gmailOpts,
		Logger:      logger,
		Metrics:     metrics,
		AuditLogger: instrumentation.NewAuditLogger(slog.Default(), instrConfig.AuditLogging),
	})
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv, err := newMCPServer(serverContext)
	if err != nil {
		return err
	}

	if opts.transport == transportStdio {
		return runStdioServer(mcpSrv)
	}

	// Start metrics server if enabled and not in stdio mode
	if opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	httpServer := server.NewHTTPServer(mcpSrv, serverContext, server.HTTPServerConfig{
		Addr:               ":" + opts.port,
		SessionIdleTimeout: opts.sessionIdleTimeout,
	})
	return httpServer.Serve(shutdownCtx)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	slog.Info("mcptools MCP server running on stdio")
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
