package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("TINT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatAuto, ParseFormat("whatever"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))

	level, err := ParseLevelStrict("error")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
	_, err = ParseLevelStrict("loud")
	assert.Error(t, err)
}

func TestNewHandler_JSONForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("clip saved", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "clip saved", entry["msg"])
	assert.Equal(t, float64(7), entry["id"])
}

func TestNewHandler_TextWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatText, slog.LevelInfo))

	logger.Info("watching", "interval", "1s")
	assert.Contains(t, buf.String(), "watching")
	assert.Contains(t, buf.String(), "interval=1s")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clipkeep.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}
