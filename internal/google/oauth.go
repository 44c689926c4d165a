package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mtanzim/mcptools/internal/instrumentation"
	"github.com/mtanzim/mcptools/internal/logging"
)

// ErrNotAuthorized is returned when no token is saved and a browser flow
// cannot be run.
var ErrNotAuthorized = errors.New("gmail is not authorized")

// DefaultLoginTimeout bounds how long a browser flow waits for the redirect.
const DefaultLoginTimeout = 2 * time.Minute

// AuthHint is shown to users in place of results when Gmail is not authorized.
func AuthHint() string {
	return "Gmail is not authorized yet. Call the gmail-auth tool (or run `mcptools auth`) " +
		"and complete the Google consent screen, then try again."
}

// Config configures an Authorizer.
type Config struct {
	// TokenPath is where the authorized_user token is kept (TOKEN_PATH).
	TokenPath string
	// CredentialsPath is the OAuth client file from the Google console (CREDENTIALS_PATH).
	CredentialsPath string

	// Interactive allows Authorize to fall back to a browser flow.
	Interactive bool
	// Prompt receives the consent URL during a browser flow. Defaults to stderr.
	Prompt io.Writer

	LoginTimeout time.Duration

	Logger  logging.Logger
	Metrics *instrumentation.Metrics
}

// Authorizer produces authorized HTTP clients for the Gmail API.
type Authorizer struct {
	store   TokenStore
	config  Config
	logger  logging.Logger
	metrics *instrumentation.Metrics

	mu    sync.Mutex
	login *LoginSession
}

// NewAuthorizer creates an Authorizer backed by a FileTokenStore.
func NewAuthorizer(config Config) *Authorizer {
	return NewAuthorizerWithStore(NewFileTokenStore(config.TokenPath), config)
}

// NewAuthorizerWithStore creates an Authorizer with a custom token store.
func NewAuthorizerWithStore(store TokenStore, config Config) *Authorizer {
	if config.Prompt == nil {
		config.Prompt = os.Stderr
	}
	if config.LoginTimeout <= 0 {
		config.LoginTimeout = DefaultLoginTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Authorizer{store: store, config: config, logger: logger, metrics: config.Metrics}
}

// HasToken reports whether a token is saved.
func (a *Authorizer) HasToken() bool {
	return a.store.Exists()
}

// Authorize returns an HTTP client for the saved token. Without one it runs
// a browser flow when interactive, and fails with ErrNotAuthorized otherwise.
//
// The returned client keeps refreshing after ctx is cancelled; ctx only
// bounds the browser flow.
func (a *Authorizer) Authorize(ctx context.Context) (*http.Client, error) {
	if a.store.Exists() {
		client, err := a.tokenClient(ctx)
		if err != nil {
			a.metrics.RecordAuth(ctx, instrumentation.AuthResultFailure)
			return nil, err
		}
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultTokenFile)
		return client, nil
	}

	if !a.config.Interactive {
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultMissing)
		return nil, ErrNotAuthorized
	}

	session, err := a.BeginLogin(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.config.Prompt, "Open this URL in your browser to authorize Gmail:\n%s\n", session.URL)
	if err := session.Wait(ctx); err != nil {
		return nil, err
	}
	return a.tokenClient(ctx)
}

// tokenClient wraps the saved token in a refreshing client. The token
// source holds on to its context for every refresh, so it must not be tied
// to the caller's request.
func (a *Authorizer) tokenClient(ctx context.Context) (*http.Client, error) {
	ctx = context.WithoutCancel(ctx)
	ts, err := a.store.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// oauthConfig reads the OAuth client credentials file.
func (a *Authorizer) oauthConfig() (*oauth2.Config, error) {
	if a.config.CredentialsPath == "" {
		return nil, errors.New("CREDENTIALS_PATH is not set")
	}
	data, err := os.ReadFile(a.config.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return cfg, nil
}

// LoginSession is a browser flow waiting for Google's redirect.
type LoginSession struct {
	// URL is the consent page the user must open.
	URL string

	done chan struct{}
	err  error
}

// Wait blocks until the flow finishes or ctx is done.
func (s *LoginSession) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the flow has finished.
func (s *LoginSession) Done() <-chan struct{} { return s.done }

// BeginLogin starts a loopback server, returns the consent URL, and saves
// the token in the background once the redirect arrives. A flow already in
// progress is returned instead of starting another.
func (a *Authorizer) BeginLogin(ctx context.Context) (*LoginSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.login != nil {
		select {
		case <-a.login.done:
		default:
			return a.login, nil
		}
	}

	cfg, err := a.oauthConfig()
	if err != nil {
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultFailure)
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen on loopback: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/", ln.Addr().(*net.TCPAddr).Port)

	state := fmt.Sprintf("mcptools-%d", time.Now().UnixNano())
	session := &LoginSession{
		URL:  cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce),
		done: make(chan struct{}),
	}
	a.login = session

	codeCh := make(chan string, 1)
	mux := http.NewServeMux()
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing 'code' parameter", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
	go func() { _ = srv.Serve(ln) }()

	// The flow outlives the request that started it.
	flowCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.LoginTimeout)
	go func() {
		defer cancel()
		defer func() { _ = srv.Shutdown(context.Background()) }()
		session.err = a.finishLogin(flowCtx, cfg, codeCh)
		close(session.done)
	}()

	a.logger.Info("started gmail authorization", "redirect", cfg.RedirectURL)
	return session, nil
}

func (a *Authorizer) finishLogin(ctx context.Context, cfg *oauth2.Config, codeCh <-chan string) error {
	var code string
	select {
	case <-ctx.Done():
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultFailure)
		return fmt.Errorf("waiting for authorization: %w", ctx.Err())
	case code = <-codeCh:
	}

	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultFailure)
		return fmt.Errorf("token exchange: %w", err)
	}
	if err := a.store.Save(ClientCredentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret}, tok); err != nil {
		a.metrics.RecordAuth(ctx, instrumentation.AuthResultFailure)
		return err
	}

	a.metrics.RecordAuth(ctx, instrumentation.AuthResultBrowser)
	a.logger.Info("gmail authorization saved")
	return nil
}
