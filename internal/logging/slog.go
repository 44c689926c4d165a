package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Attribute keys shared by every log line the server emits.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyTool      = "tool"
	KeyThread    = "thread_id"
	KeyMessage   = "message_id"
	KeyPage      = "page"
	KeyUserHash  = "user_hash"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values. Kept in sync with the instrumentation package by hand
// because instrumentation imports logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// New builds the process logger. Output is text so it stays readable on
// stderr when the server is driven over stdio.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithService returns a logger scoped to an upstream API (gmail, tomorrow).
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }

func Tool(tool string) slog.Attr { return slog.String(KeyTool, tool) }

func Thread(id string) slog.Attr { return slog.String(KeyThread, id) }

func Message(id string) slog.Attr { return slog.String(KeyMessage, id) }

func Page(n int) slog.Attr { return slog.Int(KeyPage, n) }

func Status(status string) slog.Attr { return slog.String(KeyStatus, status) }

// Err returns a slog attribute for an error. A nil error yields an empty
// group, which slog drops from the output.
//
//	logger.Info("fetched page", logging.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an address so log lines can be correlated without
// carrying the address itself.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns the anonymized form of email as a slog attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// SanitizeToken masks a credential (OAuth token, API key) down to its length.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// SanitizeURL replaces the value of every query parameter named in keys
// with its masked form. Used for upstream URLs that carry an API key.
func SanitizeURL(raw string, keys ...string) string {
	before, query, found := strings.Cut(raw, "?")
	if !found {
		return raw
	}
	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		for _, k := range keys {
			if name == k {
				pairs[i] = name + "=" + SanitizeToken(value)
			}
		}
	}
	return before + "?" + strings.Join(pairs, "&")
}
