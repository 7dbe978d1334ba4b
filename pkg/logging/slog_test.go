package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Config{Console: &console, Level: InfoLevel})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info(context.Background(), "cache miss", Fields{"source": "a.md"})

	out := console.String()
	assert.Contains(t, out, "cache miss")
	assert.Contains(t, out, "source=a.md")
}

func TestNew_CreatesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "filesim.log")

	var console bytes.Buffer
	logger, err := New(Config{Console: &console, FilePath: logPath, Level: DebugLevel})
	require.NoError(t, err)

	logger.Warn(context.Background(), "layer failed", Fields{"layer": "semantic"})
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry), "log file line is not JSON: %q", data)
	assert.Equal(t, "layer failed", entry["msg"])
	assert.Equal(t, "semantic", entry["layer"])
	assert.Contains(t, console.String(), "layer failed", "console sink should receive the entry too")
}

func TestSlogLogger_LogLevels(t *testing.T) {
	var console, sink bytes.Buffer
	logger := NewWithWriters(&console, &sink, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug message", nil)
	logger.Info(ctx, "info message", nil)
	logger.Warn(ctx, "warn message", nil)
	logger.Error(ctx, "error message", errors.New("boom"), nil)

	out := sink.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, `"error":"boom"`)
}

func TestSlogLogger_WithFields(t *testing.T) {
	var console, sink bytes.Buffer
	base := NewWithWriters(&console, &sink, DebugLevel)

	child := base.WithFields(Fields{"analysis_id": "abc", "layer": "filename"})
	child.Info(context.Background(), "scored", Fields{"layer": "content"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(sink.Bytes()), &entry))
	assert.Equal(t, "abc", entry["analysis_id"])
	assert.Equal(t, "content", entry["layer"], "call fields should override inherited ones")

	sink.Reset()
	base.Info(context.Background(), "plain", nil)
	assert.NotContains(t, sink.String(), "analysis_id", "WithFields must not modify the parent logger")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestNullLogger(t *testing.T) {
	var logger Logger = NewNullLogger()
	logger.Info(context.Background(), "ignored", Fields{"k": "v"})

	assert.NotNil(t, logger.WithFields(Fields{"k": "v"}))
	assert.False(t, logger.(*SlogLogger).logger.Enabled(context.Background(), slog.LevelError), "null logger should drop every level")
	assert.NoError(t, logger.Close())
}
