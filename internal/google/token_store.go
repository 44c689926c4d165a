package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenStore persists the refresh token for the mailbox.
type TokenStore interface {
	// TokenSource returns a refreshing token source, or an error wrapping
	// fs.ErrNotExist when nothing is saved.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)

	// Save stores tok together with the client that issued it.
	Save(client ClientCredentials, tok *oauth2.Token) error

	Exists() bool
}

// ClientCredentials identifies the OAuth client.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// authorizedUser is the token file layout, shared with Google's client
// libraries ("type": "authorized_user").
type authorizedUser struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// FileTokenStore keeps the token in a JSON file.
type FileTokenStore struct {
	Path string
}

// NewFileTokenStore creates a store at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

func (s *FileTokenStore) Exists() bool {
	if s.Path == "" {
		return false
	}
	_, err := os.Stat(s.Path)
	return err == nil
}

// TokenSource loads the saved credentials.
func (s *FileTokenStore) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("token path is not set: %w", fs.ErrNotExist)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return creds.TokenSource, nil
}

// Save writes the token file atomically with owner-only permissions.
func (s *FileTokenStore) Save(client ClientCredentials, tok *oauth2.Token) error {
	if s.Path == "" {
		return errors.New("token path is not set")
	}
	if tok == nil || tok.RefreshToken == "" {
		return errors.New("token has no refresh token")
	}

	data, err := json.Marshal(authorizedUser{
		Type:         "authorized_user",
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RefreshToken: tok.RefreshToken,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return os.Rename(tmp, s.Path)
}
