package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Enabled: false, Writer: &buf})
	Info("dropped", "k", 1)
	assert.Zero(t, buf.Len())
}

func TestInitTextLevel(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelWarn})

	Info("below level")
	assert.Zero(t, buf.Len())

	Warn("trial loop stopped", "trial", 3)
	assert.Contains(t, buf.String(), "trial loop stopped")
	assert.Contains(t, buf.String(), "trial=3")
}

func TestInitJSON(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelDebug, JSON: true})
	Debug("frame map opened", "path", "/proc/self/pagemap")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "frame map opened", rec["msg"])
	assert.Equal(t, "/proc/self/pagemap", rec["path"])
}
