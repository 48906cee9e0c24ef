package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/quickwit-mcp/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	cfg.LogFile = "/tmp/console.log"

	got := FromConfig(cfg)
	assert.Equal(t, "debug", got.Level)
	assert.Equal(t, "/tmp/console.log", got.FilePath)
	assert.Equal(t, cfg.LogMaxSizeMB, got.MaxSizeMB)
	assert.Equal(t, cfg.LogMaxBackups, got.MaxBackups)
	assert.Equal(t, cfg.LogMaxAgeDays, got.MaxAgeDays)
	assert.True(t, got.Compress)
}

func TestSetup_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "console.log")
	cleanup, err := Setup(Config{Level: "warn", FilePath: path, MaxSizeMB: 1})
	require.NoError(t, err)

	slog.Info("dropped")
	slog.Warn("kept", slog.String("index", "app-logs"))
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "msg=kept index=app-logs")
}
