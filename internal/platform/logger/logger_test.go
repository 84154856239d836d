package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/phrazzld/slotswap-api/internal/config"
	"github.com/phrazzld/slotswap-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"Error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := logger.ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestSetupWithWriter_JSONAndLevel(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	var buf bytes.Buffer
	l := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, &buf)

	l.Info("suppressed")
	assert.Empty(t, buf.String())

	l.Warn("kept", slog.String("component", "test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "test", entry["component"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.Equal(t, slog.Default(), logger.FromContext(context.Background()))
	assert.Equal(t, custom, logger.FromContextOrDefault(context.Background(), custom))

	ctx := logger.WithLogger(context.Background(), custom)
	assert.Equal(t, custom, logger.FromContext(ctx))

	other := slog.New(slog.NewTextHandler(&buf, nil))
	assert.Equal(t, custom, logger.FromContextOrDefault(ctx, other))
	assert.Equal(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}

func TestWithTraceID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logger.WithTraceID(context.Background(), base, "trace-123")
	assert.Equal(t, "trace-123", logger.TraceIDFromContext(ctx))
	assert.Empty(t, logger.TraceIDFromContext(context.Background()))

	logger.FromContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
}
