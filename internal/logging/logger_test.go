package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*StructuredLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogLevelString(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, level)

	level, err = ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden too")
	logger.Warn(ctx, nil, "shown")
	logger.Error(ctx, errors.New("boom"), "also shown")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["msg"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestWithFieldsAndComponent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	scoped := logger.WithComponent("scanner").With("root", "./src")
	scoped.Info(context.Background(), "scan finished", "components", 3)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "scanner", entries[0]["component"])
	assert.Equal(t, "./src", entries[0]["root"])
	assert.Equal(t, float64(3), entries[0]["components"])
}

func TestWithDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	_ = logger.With("request_id", "abc")
	logger.Info(context.Background(), "plain")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	_, ok := entries[0]["request_id"]
	assert.False(t, ok)
}

func TestRequestLoggerInContext(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)
	server := logger.WithComponent("server")

	assert.Same(t, logger, FromContext(context.Background(), logger))

	ctx := NewContext(context.Background(), server.WithRequestID("req-1"))
	FromContext(ctx, logger).Warn(ctx, errors.New("boom"), "fragment missing")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0]["request_id"])
	assert.Equal(t, "server", entries[0]["component"])
	assert.Equal(t, "boom", entries[0]["error"])
}

func TestStartOperation(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	op := StartOperation(logger, "scan")
	op.End(context.Background(), "count", 2)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "scan", entries[0]["operation"])
	assert.Contains(t, entries[0], "duration_ms")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "dropped")
	})
}
