package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: FormatJSON}, &buf)
	require.NoError(t, err)

	log.Debug().Str("url", "https://example.com").Msg("fetched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "debug", entry["level"])
	require.Equal(t, "fetched", entry["message"])
	require.Equal(t, "https://example.com", entry["url"])
	require.Contains(t, entry, "time")
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "WARN", Format: FormatJSON}, &buf)
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNew_ConsoleFormatAndDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{}, &buf)
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Info().Msg("console line")
	require.Contains(t, buf.String(), "console line")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "chatty"}, &bytes.Buffer{})
	require.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "audit.log")

	var buf bytes.Buffer
	log, err := New(Config{Format: FormatJSON, File: path}, &buf)
	require.NoError(t, err)

	log.Info().Msg("to both")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "to both"))
	require.Contains(t, buf.String(), "to both")
}
