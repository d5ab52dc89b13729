package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level LogLevel) (*SoireeLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: "json",
		Output: buf,
	})
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerLevels(t *testing.T) {
	t.Run("debug suppressed at info level", func(t *testing.T) {
		logger, buf := newTestLogger(LevelInfo)
		logger.Debug(context.Background(), "should not appear")
		assert.Empty(t, buf.String())
	})

	t.Run("info emitted at info level", func(t *testing.T) {
		logger, buf := newTestLogger(LevelInfo)
		logger.Info(context.Background(), "hello", "key", "value")

		entry := decodeLine(t, buf)
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("error includes error field", func(t *testing.T) {
		logger, buf := newTestLogger(LevelError)
		logger.Error(context.Background(), errors.New("boom"), "failed")

		entry := decodeLine(t, buf)
		assert.Equal(t, "failed", entry["msg"])
		assert.Equal(t, "boom", entry["error"])
	})
}

func TestLoggerWith(t *testing.T) {
	t.Run("with fields persist", func(t *testing.T) {
		logger, buf := newTestLogger(LevelInfo)
		scoped := logger.With("request_id", "abc123")
		scoped.Info(context.Background(), "scoped message")

		entry := decodeLine(t, buf)
		assert.Equal(t, "abc123", entry["request_id"])
	})

	t.Run("with component", func(t *testing.T) {
		logger, buf := newTestLogger(LevelInfo)
		scoped := logger.WithComponent("router")
		scoped.Info(context.Background(), "navigating")

		entry := decodeLine(t, buf)
		assert.Equal(t, "router", entry["component"])
	})

	t.Run("with does not mutate parent", func(t *testing.T) {
		logger, buf := newTestLogger(LevelInfo)
		_ = logger.With("child_only", true)
		logger.Info(context.Background(), "parent message")

		entry := decodeLine(t, buf)
		_, exists := entry["child_only"]
		assert.False(t, exists)
	})
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	// Must not panic and must discard output.
	logger.Info(context.Background(), "ignored")
	logger.Error(context.Background(), errors.New("ignored"), "ignored")
}
