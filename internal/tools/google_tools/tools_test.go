package google_tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/server"
)

func newServerContext(t *testing.T, cfg google.Config) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), server.Config{
		Authorizer: google.NewAuthorizer(cfg),
		Logger:     logging.Discard(),
	})
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func callAuth(t *testing.T, sc *server.ServerContext) (*mcp.CallToolResult, string) {
	t.Helper()
	res, err := handleAuth(sc)(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestRegisterGoogleTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterGoogleTools(s, newServerContext(t, google.Config{})))
	assert.Contains(t, s.ListTools(), AuthTool)
}

func TestAuth_AlreadyAuthorized(t *testing.T) {
	tokenPath := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, google.NewFileTokenStore(tokenPath).Save(google.ClientCredentials{ClientID: "cid"}, &oauth2.Token{RefreshToken: "rt"}))

	_, text := callAuth(t, newServerContext(t, google.Config{TokenPath: tokenPath}))
	assert.Equal(t, AlreadyAuthorized, text)
}

func TestAuth_MissingCredentials(t *testing.T) {
	sc := newServerContext(t, google.Config{TokenPath: filepath.Join(t.TempDir(), "token.json")})

	res, text := callAuth(t, sc)
	assert.True(t, res.IsError)
	assert.Contains(t, text, google.AuthHint())
	assert.Contains(t, text, "CREDENTIALS_PATH")
}

func TestAuth_StartsBrowserFlow(t *testing.T) {
	dir := t.TempDir()
	credentialsPath := filepath.Join(dir, "credentials.json")
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     "cid",
			"client_secret": "secret",
			"auth_uri":      "https://accounts.example.com/o/oauth2/auth",
			"token_uri":     "https://accounts.example.com/token",
			"redirect_uris": []string{"http://localhost"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(credentialsPath, data, 0o600))

	sc := newServerContext(t, google.Config{
		TokenPath:       filepath.Join(dir, "token.json"),
		CredentialsPath: credentialsPath,
		LoginTimeout:    time.Second,
	})

	res, text := callAuth(t, sc)
	assert.False(t, res.IsError)
	assert.Contains(t, text, "https://accounts.example.com/o/oauth2/auth")
	assert.Contains(t, text, "access_type=offline")
}

func TestAuth_NoAuthorizer(t *testing.T) {
	sc := server.NewServerContext(context.Background(), server.Config{Logger: logging.Discard()})
	t.Cleanup(func() { _ = sc.Shutdown() })

	_, text := callAuth(t, sc)
	assert.Equal(t, google.AuthHint(), text)
}
