package gmail

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// Outcomes reported by CreateDraftReply.
const (
	DraftCreated = "Draft was created successfully."
	DraftFailed  = "Something went wrong. Please try again."
)

// DraftRequest is the reply a user asked to draft. The JSON names match
// the draft tool's input schema.
type DraftRequest struct {
	Address   string `json:"address"`
	Content   string `json:"content"`
	ThreadID  string `json:"threadId"`
	MessageID string `json:"messageId"`
	Subject   string `json:"subject"`
}

// DraftCreator is the part of Client used to create drafts.
type DraftCreator interface {
	GetProfile(ctx context.Context) (*gmailv1.Profile, error)
	CreateDraft(ctx context.Context, raw, threadID string) (int, error)
}

// ComposeReply builds the RFC 2822 reply text sent from the from address.
func ComposeReply(from string, req DraftRequest) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + req.Address + "\r\n")
	b.WriteString("Subject: Re: " + req.Subject + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("In-Reply-To: " + req.MessageID + "\r\n")
	b.WriteString("References: " + req.MessageID + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(req.Content + "\r\n")
	return b.String()
}

// EncodeRaw encodes a message for the Gmail raw field: base64url, no padding.
func EncodeRaw(msg string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(msg))
}

// CreateDraftReply drafts req in its thread, sent from the authenticated
// mailbox. Any status other than 200 yields DraftFailed; only failures to
// reach Gmail return an error.
func CreateDraftReply(ctx context.Context, c DraftCreator, req DraftRequest) (string, error) {
	profile, err := c.GetProfile(ctx)
	if err != nil {
		return "", err
	}

	status, err := c.CreateDraft(ctx, EncodeRaw(ComposeReply(profile.EmailAddress, req)), req.ThreadID)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return DraftFailed, nil
	}
	return DraftCreated, nil
}
