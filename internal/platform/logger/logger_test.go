package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "", want: slog.LevelInfo},
		{name: "warn", want: slog.LevelWarn},
		{name: "warning", want: slog.LevelWarn},
		{name: "Error", want: slog.LevelError},
		{name: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, err := ParseLevel(tc.name)
			assert.Equal(t, tc.want, level)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupWithWriter(t *testing.T) {
	clearCIEnv(t)
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, &buf)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("hidden")
	logger.Warn("visible", "file_name", "notes.txt")

	output := strings.TrimSpace(buf.String())
	require.NotEmpty(t, output)
	assert.NotContains(t, output, "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "notes.txt", entry["file_name"])

	assert.Same(t, logger.Handler(), slog.Default().Handler())
}

func TestSetupWithWriter_InvalidLevelFallsBack(t *testing.T) {
	clearCIEnv(t)
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.ServerConfig{LogLevel: "loud"}, &buf)
	require.NoError(t, err)

	logger.Debug("debug message")
	logger.Info("info message")

	assert.NotContains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "info message")
}

func TestSetupWithWriter_NilWriter(t *testing.T) {
	_, err := SetupWithWriter(config.ServerConfig{LogLevel: "info"}, nil)
	assert.Error(t, err)
}

func TestCIHandler_AddsMetadata(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("GITHUB_RUN_ID", "12345")
	t.Setenv("GITHUB_SHA", "abc123")

	var buf bytes.Buffer
	logger := slog.New(NewCIHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.With("component", "test").WithGroup("req").Info("with metadata", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "with metadata", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, true, entry["ci"])
	assert.Equal(t, "12345", entry["ci_run_id"], "metadata stays top level")
	assert.Equal(t, "abc123", entry["ci_commit"])
	assert.Equal(t, map[string]any{"id": float64(7)}, entry["req"])
}

func TestSetupWithWriter_UsesCIHandlerInCI(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("GITHUB_RUN_ID", "999")
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	logger, err := SetupWithWriter(config.ServerConfig{LogLevel: "info"}, &buf)
	require.NoError(t, err)

	_, isCI := logger.Handler().(*CIHandler)
	assert.True(t, isCI)

	logger.Info("in ci")
	assert.Contains(t, buf.String(), "999")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := FromContext(ctx)
	assert.False(t, ok)
	assert.Same(t, slog.Default(), FromContextOrDefault(ctx))

	logger, logBuf := GetTestLogger(t)
	ctx = WithLogger(ctx, logger)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, logger, got)

	FromContextOrDefault(ctx).Info("from context", "trace_id", "t-1")
	AssertLogContains(t, logBuf, "from context")
	AssertLogContains(t, logBuf, "t-1")
	AssertLogNotContains(t, logBuf, "absent")
}

func TestTestLogBuffer_GetLogEntries(t *testing.T) {
	t.Parallel()

	logger, logBuf := GetTestLogger(t)
	logger.Info("first", "n", 1)
	logger.Warn("second")

	entries, err := logBuf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0]["msg"])
	assert.Equal(t, "second", entries[1]["msg"])

	logBuf.Reset()
	assert.Empty(t, logBuf.String())
}
