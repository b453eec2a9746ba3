package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", "json", &buf)

	log.Debug("hidden")
	log.Info("collected product links", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "collected product links", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestTee(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")

	w, closer, err := Tee(&console, path)
	require.NoError(t, err)

	NewWithWriter("info", "text", w).Info("browser launched")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "browser launched")
	assert.Contains(t, console.String(), "browser launched")
}

func TestTeeFallsBackToConsole(t *testing.T) {
	var console bytes.Buffer
	w, closer, err := Tee(&console, filepath.Join(t.TempDir(), "missing", "run.log"))

	assert.Error(t, err)
	assert.Same(t, &console, w)
	assert.NoError(t, closer.Close())
}
