package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	require.NoError(t, SetupLogger(slog.LevelDebug, "json"))
	require.NoError(t, SetupLogger(slog.LevelInfo, "console"))
	// Unknown formats fall back to console rather than failing.
	require.NoError(t, SetupLogger(slog.LevelWarn, "fancy"))
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogError(errors.New("disk full"), "failed to save record", Fields{"patient_id": "MED-1"})
	LogInfo("record saved", Fields{"count": 3})

	out := buf.String()
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "failed to save record")
	assert.Contains(t, out, "patient_id=MED-1")
	assert.Contains(t, out, "count=3")
}
