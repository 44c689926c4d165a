package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestFileTokenStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileTokenStore(path)
	assert.False(t, store.Exists())

	err := store.Save(ClientCredentials{ClientID: "cid", ClientSecret: "secret"}, &oauth2.Token{RefreshToken: "rt"})
	require.NoError(t, err)
	assert.True(t, store.Exists())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved map[string]string
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, map[string]string{
		"type":          "authorized_user",
		"client_id":     "cid",
		"client_secret": "secret",
		"refresh_token": "rt",
	}, saved)

	ts, err := store.TokenSource(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ts)
}

func TestFileTokenStore_Errors(t *testing.T) {
	store := NewFileTokenStore("")
	assert.False(t, store.Exists())
	assert.Error(t, store.Save(ClientCredentials{}, &oauth2.Token{RefreshToken: "rt"}))

	store = NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	assert.Error(t, store.Save(ClientCredentials{}, &oauth2.Token{AccessToken: "only-access"}))

	_, err := store.TokenSource(context.Background())
	assert.Error(t, err)
}

func TestAuthorize_NonInteractiveWithoutToken(t *testing.T) {
	a := NewAuthorizer(Config{TokenPath: filepath.Join(t.TempDir(), "token.json")})

	_, err := a.Authorize(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, a.HasToken())
	assert.Contains(t, AuthHint(), "gmail-auth")
}

func TestAuthorize_WithSavedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, NewFileTokenStore(path).Save(ClientCredentials{ClientID: "cid"}, &oauth2.Token{RefreshToken: "rt"}))

	client, err := NewAuthorizer(Config{TokenPath: path}).Authorize(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestAuthorize_ClientOutlivesContext(t *testing.T) {
	var refreshes atomic.Int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	path := filepath.Join(t.TempDir(), "token.json")
	data, err := json.Marshal(map[string]string{
		"type":          "authorized_user",
		"client_id":     "cid",
		"client_secret": "secret",
		"refresh_token": "rt",
		"token_uri":     tokenSrv.URL,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	client, err := NewAuthorizer(Config{TokenPath: path}).Authorize(ctx)
	require.NoError(t, err)
	cancel()

	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestBeginLogin_MissingCredentials(t *testing.T) {
	a := NewAuthorizer(Config{TokenPath: filepath.Join(t.TempDir(), "token.json")})
	_, err := a.BeginLogin(context.Background())
	assert.Error(t, err)
}

// writeCredentials writes an installed-app client file whose token
// endpoint is tokenURL.
func writeCredentials(t *testing.T, tokenURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	data, err := json.Marshal(map[string]any{
		"installed": map[string]any{
			"client_id":     "cid",
			"client_secret": "secret",
			"auth_uri":      "https://accounts.example.com/o/oauth2/auth",
			"token_uri":     tokenURL,
			"redirect_uris": []string{"http://localhost"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestBeginLogin_LoopbackFlow(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","refresh_token":"rt","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	var prompt bytes.Buffer
	a := NewAuthorizer(Config{
		TokenPath:       tokenPath,
		CredentialsPath: writeCredentials(t, tokenSrv.URL+"/token"),
		Prompt:          &prompt,
		LoginTimeout:    10 * time.Second,
	})

	session, err := a.BeginLogin(context.Background())
	require.NoError(t, err)

	again, err := a.BeginLogin(context.Background())
	require.NoError(t, err)
	assert.Same(t, session, again, "a running flow is reused")

	consent, err := url.Parse(session.URL)
	require.NoError(t, err)
	q := consent.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Contains(t, q.Get("scope"), "gmail.readonly")
	assert.Contains(t, q.Get("scope"), "gmail.compose")

	redirect := q.Get("redirect_uri")
	resp, err := http.Get(redirect + "?state=wrong&code=the-code")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(redirect + "?state=" + url.QueryEscape(q.Get("state")) + "&code=the-code")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.Wait(ctx))
	assert.True(t, a.HasToken())

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"refresh_token":"rt"`)
	assert.Contains(t, string(data), `"client_id":"cid"`)
}

func TestLoginSession_WaitHonorsContext(t *testing.T) {
	s := &LoginSession{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(s.Wait(ctx), context.Canceled))
}
