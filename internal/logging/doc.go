// Package logging holds the structured logging helpers shared by the
// mcptools server.
//
// Everything logs through log/slog. The helpers here keep attribute names
// consistent (operation, tool, thread_id, page) and keep PII out of log
// lines: sender addresses are hashed with AnonymizeEmail, and API keys or
// OAuth tokens are reduced to their length with SanitizeToken.
//
// The mail pipeline depends on the small Logger interface rather than on
// *slog.Logger directly so tests can pass Discard() or a capturing logger:
//
//	log := logging.NewSlogAdapter(logging.WithOperation(slog.Default(), "gmail.snippets"))
//	log.Warn("skipping message", logging.Message(id), logging.Err(err))
//
// When the server runs over stdio, stdout is reserved for protocol frames,
// so New is always pointed at stderr.
package logging
