package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), nil,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return c
}

func TestClient_ListMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "newer_than:14d", q.Get("q"))
		assert.Equal(t, "INBOX", q.Get("labelIds"))
		assert.Equal(t, "3", q.Get("maxResults"))
		assert.Equal(t, "tok", q.Get("pageToken"))
		writeJSON(w, http.StatusOK, map[string]any{
			"messages":      []map[string]string{{"id": "m1", "threadId": "t1"}},
			"nextPageToken": "next",
		})
	})
	c := newTestClient(t, mux)

	res, err := c.ListMessages(context.Background(), ListQuery{Days: 14, PageSize: 3, PageToken: "tok"})
	require.NoError(t, err)

	require.Len(t, res.Messages, 1)
	assert.Equal(t, "m1", res.Messages[0].Id)
	assert.Equal(t, "next", res.NextPageToken)
}

func TestClient_GetMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "full", r.URL.Query().Get("format"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "m1", "threadId": "t1", "snippet": "hi"})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/gone", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "Not Found"}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/odd", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNonAuthoritativeInfo, map[string]any{"id": "odd"})
	})
	c := newTestClient(t, mux)

	msg, err := c.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "t1", msg.ThreadId)
	assert.Equal(t, "hi", msg.Snippet)

	_, err = c.GetMessage(context.Background(), "gone")
	assert.Error(t, err)

	_, err = c.GetMessage(context.Background(), "odd")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestClient_GetThreadAndProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/threads/t1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "t1", "messages": []map[string]string{{"id": "m1"}, {"id": "m2"}}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"emailAddress": "me@example.com"})
	})
	c := newTestClient(t, mux)

	thread, err := c.GetThread(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 2)

	profile, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", profile.EmailAddress)
}

func TestClient_CreateDraft(t *testing.T) {
	var got gmailv1.Draft
	status := http.StatusOK

	mux := http.NewServeMux()
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if status != http.StatusOK {
			writeJSON(w, status, map[string]any{"error": map[string]any{"code": status, "message": "Invalid"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "d1"})
	})
	c := newTestClient(t, mux)

	code, err := c.CreateDraft(context.Background(), "cmF3", "t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, got.Message)
	assert.Equal(t, "cmF3", got.Message.Raw)
	assert.Equal(t, "t1", got.Message.ThreadId)

	status = http.StatusBadRequest
	code, err = c.CreateDraft(context.Background(), "cmF3", "t1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)
}
