package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/tracksheet/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestNewLogger_AutoIsJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := newLogger(config.LogConfig{Level: "info", Format: "auto"}, &buf)
	require.NoError(t, err)
	require.Nil(t, closer)

	logger.Info("hello", "k", "v")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := newLogger(config.LogConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "msg=kept")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracksheet.log")
	logger, closer, err := newLogger(config.LogConfig{Level: "info", Format: "auto", Path: path}, os.Stdout)
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"to file"`)
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	chunk := []byte(strings.Repeat("x", 1024*1024-1) + "\n")
	for range 7 {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.LessOrEqual(t, info.Size(), int64(maxLogSizeBytes))
	require.GreaterOrEqual(t, info.Size(), int64(keepLogSizeBytes))
}
