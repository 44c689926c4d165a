package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

const (
	// DefaultHTTPAddr listens on PORT 3000.
	DefaultHTTPAddr = ":3000"

	// EndpointPath is where MCP requests are served.
	EndpointPath = "/mcp"
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr string

	// SessionIdleTimeout evicts sessions with no traffic for this long.
	SessionIdleTimeout time.Duration
	// SessionCleanupInterval is how often idle sessions are swept.
	SessionCleanupInterval time.Duration
}

// HTTPServer serves an MCP server over streamable HTTP.
type HTTPServer struct {
	config     HTTPServerConfig
	sessions   *SessionRegistry
	health     *HealthChecker
	handler    http.Handler
	httpServer *http.Server
	logger     logging.Logger
	metrics    *instrumentation.Metrics
}

// NewHTTPServer wires the MCP endpoint, health probes and request
// instrumentation around mcpSrv.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}

	logger := sc.Logger()
	sessions := NewSessionRegistry(config.SessionIdleTimeout, logger, sc.Metrics())

	health := NewHealthChecker(sc)
	health.SetSessionRegistry(sessions)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(EndpointPath),
		mcpserver.WithSessionIdManager(sessions),
	)

	mux := http.NewServeMux()
	mux.Handle(EndpointPath, streamable)
	health.RegisterHealthEndpoints(mux)

	s := &HTTPServer{
		config:   config,
		sessions: sessions,
		health:   health,
		logger:   logger,
		metrics:  sc.Metrics(),
	}
	s.handler = otelhttp.NewHandler(s.accessLog(mux), "mcptools")
	return s
}

// Handler returns the instrumented root handler.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

// Sessions returns the session registry.
func (s *HTTPServer) Sessions() *SessionRegistry { return s.sessions }

// Health returns the health checker.
func (s *HTTPServer) Health() *HealthChecker { return s.health }

// Serve listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *HTTPServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *HTTPServer) ServeListener(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.sessions.Start(s.config.SessionCleanupInterval)
	defer s.sessions.Stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.httpServer.Serve(ln)
	}()
	s.logger.Info("mcp server listening", "addr", ln.Addr().String(), "endpoint", EndpointPath)

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.health.SetReady(false)
	s.logger.Info("shutting down mcp server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the wrapper.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "other"

// routeLabel is the mux pattern that served r. Unmatched requests share one
// label so the series count stays bounded.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	return r.Pattern
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r), rec.status, duration)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration,
		)
	})
}
