package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLogger_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	l, err := NewLogger(Config{Level: slog.LevelInfo, OutputFile: path, MaxSize: 1, Console: false})
	require.NoError(t, err)
	defer l.Close()

	l.Info("startup", "dialect", "postgres")
	l.Debug("suppressed at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "startup")
	require.Contains(t, string(data), "dialect=postgres")
	require.NotContains(t, string(data), "suppressed")
}

func TestRotateLogIfNeeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))

	require.NoError(t, rotateLogIfNeeded(path, 1024))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1) // the timestamped backup
}
