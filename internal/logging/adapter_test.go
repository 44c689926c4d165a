package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

var _ Logger = (*SlogAdapter)(nil)

func TestNewSlogAdapter_NilFallsBackToDefault(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	assert.Same(t, slog.Default(), adapter.Logger())
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(New(&buf, true))

	adapter.Debug("d", "k", 1)
	adapter.Info("i")
	adapter.Warn("w", Page(3))
	adapter.Error("e")

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "page=3", "k=1"} {
		assert.Contains(t, out, want)
	}
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(New(&buf, false)).With(Tool("gmail-auth"))

	adapter.Info("hello")

	assert.Contains(t, buf.String(), "tool=gmail-auth")
}

func TestDiscard(t *testing.T) {
	// must not panic and must not write anywhere observable
	Discard().Error("dropped", "k", "v")
}
