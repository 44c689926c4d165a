package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/mtanzim/mcptools/internal/gmail"
	"github.com/mtanzim/mcptools/internal/google"
	"github.com/mtanzim/mcptools/internal/logging"
	"github.com/mtanzim/mcptools/internal/server"
	"github.com/mtanzim/mcptools/internal/ui"
)

// profileMailbox answers only GetProfile.
type profileMailbox struct {
	gmail.Mailbox
	profile *gmailv1.Profile
	err     error
}

func (m profileMailbox) GetProfile(context.Context) (*gmailv1.Profile, error) {
	return m.profile, m.err
}

func newServerContext(t *testing.T, mailbox gmail.Mailbox) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), server.Config{Logger: logging.Discard()})
	if mailbox != nil {
		sc.SetMailbox(mailbox)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func readRequest(uri string) mcp.ReadResourceRequest {
	var req mcp.ReadResourceRequest
	req.Params.URI = uri
	return req
}

func TestRegisterResources(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterUserResources(s, newServerContext(t, nil)))
	require.NoError(t, RegisterUIResources(s))
}

func TestUserProfile(t *testing.T) {
	sc := newServerContext(t, profileMailbox{profile: &gmailv1.Profile{
		EmailAddress:  "me@example.com",
		HistoryId:     42,
		MessagesTotal: 100,
		ThreadsTotal:  60,
	}})

	contents, err := handleUserProfile(context.Background(), readRequest(ProfileURI), sc)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(*mcp.TextResourceContents)
	assert.Equal(t, ProfileURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, map[string]any{
		"email":         "me@example.com",
		"historyId":     "42",
		"messagesTotal": float64(100),
		"threadsTotal":  float64(60),
	}, got)
}

func TestUserProfile_Errors(t *testing.T) {
	_, err := handleUserProfile(context.Background(), readRequest(ProfileURI), newServerContext(t, nil))
	assert.ErrorIs(t, err, google.ErrNotAuthorized)

	sc := newServerContext(t, profileMailbox{err: errors.New("boom")})
	_, err = handleUserProfile(context.Background(), readRequest(ProfileURI), sc)
	assert.ErrorContains(t, err, "boom")
}

func TestScriptResource(t *testing.T) {
	contents, err := scriptResource(ui.GreetScript)(context.Background(), readRequest("ui://greet"))
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text := contents[0].(*mcp.TextResourceContents)
	assert.Equal(t, ui.MimeRemoteDOM, text.MIMEType)
	assert.Equal(t, ui.GreetScript(), text.Text)
}
