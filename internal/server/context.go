package server

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/weather"
)

// Config holds the dependencies shared by every tool handler.
type Config struct {
	Authorizer *google.Authorizer
	Weather    *weather.Client
	Gmail      gmail.Options

	// GmailClientOptions are appended after the authorized HTTP client.
	GmailClientOptions []option.ClientOption

	Logger      logging.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	authorizer *google.Authorizer
	weather    *weather.Client
	gmailOpts  gmail.Options
	clientOpts []option.ClientOption

	logger      logging.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	mailbox  *gmail.Service
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, config Config) *ServerContext {
	ctx, cancel := context.WithCancel(ctx)

	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &ServerContext{
		ctx:         ctx,
		cancel:      cancel,
		authorizer:  config.Authorizer,
		weather:     config.Weather,
		gmailOpts:   config.Gmail,
		clientOpts:  config.GmailClientOptions,
		logger:      logger,
		metrics:     config.Metrics,
		auditLogger: config.AuditLogger,
	}
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context { return sc.ctx }

func (sc *ServerContext) Logger() logging.Logger { return sc.logger }

func (sc *ServerContext) Metrics() *instrumentation.Metrics { return sc.metrics }

func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger { return sc.auditLogger }

// Authorizer returns the Google authorizer, or nil when Gmail is not configured.
func (sc *ServerContext) Authorizer() *google.Authorizer { return sc.authorizer }

// Weather returns the forecast client, or nil when no API key is configured.
func (sc *ServerContext) Weather() *weather.Client { return sc.weather }

// GmailService returns the Gmail service, authorizing on first use.
// Failures are not cached, so a later call picks up a token saved in between.
func (sc *ServerContext) GmailService(ctx context.Context) (*gmail.Service, error) {
	sc.mu.RLock()
	if sc.mailbox != nil {
		defer sc.mu.RUnlock()
		return sc.mailbox, nil
	}
	sc.mu.RUnlock()

	if sc.authorizer == nil {
		return nil, google.ErrNotAuthorized
	}
	httpClient, err := sc.authorizer.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, sc.clientOpts...)
	// The client outlives the tool call that created it.
	client, err := gmail.NewClient(sc.ctx, sc.metrics, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.mailbox == nil {
		sc.mailbox = gmail.NewService(client, sc.gmailOpts, sc.logger, sc.metrics)
	}
	return sc.mailbox, nil
}

// SetMailbox installs a Gmail service built over mailbox, bypassing
// authorization.
func (sc *ServerContext) SetMailbox(mailbox gmail.Mailbox) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mailbox = gmail.NewService(mailbox, sc.gmailOpts, sc.logger, sc.metrics)
}

// ResetGmail drops the cached service so the next call re-authorizes.
func (sc *ServerContext) ResetGmail() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mailbox = nil
}

// Shutdown gracefully shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	sc.mailbox = nil

	return nil
}

// IsShutdown returns true if the server context has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
