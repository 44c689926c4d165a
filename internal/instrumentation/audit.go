package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtanzim/mcptools/internal/logging"
)

// ToolInvocation is one audit record for an MCP tool call.
type ToolInvocation struct {
	Tool      string
	UserEmail string
	SessionID string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
}

// NewToolInvocation starts timing a call to tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{Tool: tool, StartTime: time.Now()}
}

func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.UserEmail = email
	return ti
}

func (ti *ToolInvocation) WithSession(id string) *ToolInvocation {
	ti.SessionID = id
	return ti
}

// WithSpanContext copies the trace id of the span in ctx, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	return ti
}

// Complete stops the clock and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// attrs renders the record. The mailbox address is hashed unless includePII.
func (ti *ToolInvocation) attrs(includePII bool) []any {
	out := []any{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}
	if ti.UserEmail != "" {
		if includePII {
			out = append(out, slog.String("user", ti.UserEmail))
		} else {
			out = append(out, logging.UserHash(ti.UserEmail))
		}
	}
	if ti.SessionID != "" {
		out = append(out, slog.String("session_id", ti.SessionID))
	}
	if ti.TraceID != "" {
		out = append(out, slog.String("trace_id", ti.TraceID))
	}
	if ti.Error != "" {
		out = append(out, slog.String("error", ti.Error))
	}
	return out
}

// AuditLogger writes ToolInvocation records.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an audit logger from config. A nil logger falls
// back to slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs ti at info on success and warn on failure.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}
	if ti.Success {
		al.logger.Info("tool_executed", ti.attrs(al.includePII)...)
		return
	}
	al.logger.Warn("tool_failed", ti.attrs(al.includePII)...)
}
