package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockvoice/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("verbose"))
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.Options{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("analyzed symbol", "symbol", "AAPL")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analyzed symbol", entry["msg"])
	assert.Equal(t, "AAPL", entry["symbol"])
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.Options{Level: "warn"})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, logger.Level())

	logger.Debug("kept", "k", "v")
	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "\x1b[", "non-terminal output must not be coloured")
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockvoice.log")

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.Options{Format: "json", File: path})
	logger.Info("to both")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}
