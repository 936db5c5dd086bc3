package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(level LogLevel, json bool) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&Config{
		Level:      level,
		Output:     &buf,
		JSON:       json,
		TimeFormat: "15:04:05",
	}), &buf
}

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		l := FromContext(t.Context())

		require.NotNil(t, l)
		l.Info("message from default logger")
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")

		l := FromContext(ctx)

		require.NotNil(t, l)
	})

	t.Run("Should return default logger for nil context", func(t *testing.T) {
		//nolint:staticcheck // nil context is part of the contract
		l := FromContext(nil)

		require.NotNil(t, l)
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should convert all log levels to charm log levels", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("unknown"), 0},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should parse known levels case-insensitively", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
		assert.Equal(t, WarnLevel, ParseLevel(" warn "))
		assert.Equal(t, ErrorLevel, ParseLevel("error"))
	})

	t.Run("Should default to info for unknown input", func(t *testing.T) {
		assert.Equal(t, InfoLevel, ParseLevel("verbose"))
		assert.Equal(t, InfoLevel, ParseLevel(""))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text output with key values", func(t *testing.T) {
		l, buf := bufferLogger(InfoLevel, false)

		l.Info("plan dispatched", "chat_id", "42")

		assert.Contains(t, buf.String(), "plan dispatched")
		assert.Contains(t, buf.String(), "chat_id")
	})

	t.Run("Should write JSON output when enabled", func(t *testing.T) {
		l, buf := bufferLogger(InfoLevel, true)

		l.Info("plan dispatched")

		out := buf.String()
		assert.Contains(t, out, `"msg":"plan dispatched"`)
	})

	t.Run("Should fall back to test config when nil under go test", func(t *testing.T) {
		l := NewLogger(nil)

		require.NotNil(t, l)
		l.Info("discarded")
	})
}

func TestLogger_With(t *testing.T) {
	t.Run("Should carry fields into derived logger", func(t *testing.T) {
		base, buf := bufferLogger(InfoLevel, false)

		base.With("component", "orchestrator", "state", "degraded").Info("pipeline finished")

		out := buf.String()
		assert.Contains(t, out, "component")
		assert.Contains(t, out, "orchestrator")
		assert.Contains(t, out, "degraded")
		assert.Contains(t, out, "pipeline finished")
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Run("Should provide default configuration", func(t *testing.T) {
		cfg := DefaultConfig()

		assert.Equal(t, InfoLevel, cfg.Level)
		assert.Equal(t, os.Stdout, cfg.Output)
		assert.False(t, cfg.JSON)
		assert.Equal(t, "15:04:05", cfg.TimeFormat)
	})

	t.Run("Should provide test configuration", func(t *testing.T) {
		cfg := TestConfig()

		assert.Equal(t, DisabledLevel, cfg.Level)
		assert.Equal(t, io.Discard, cfg.Output)
	})
}

func TestIsTestEnvironment(t *testing.T) {
	t.Run("Should detect go test", func(t *testing.T) {
		assert.True(t, IsTestEnvironment())
	})
}

func TestLoggerLevels(t *testing.T) {
	t.Run("Should respect level filtering", func(t *testing.T) {
		l, buf := bufferLogger(WarnLevel, false)

		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("Should drop everything when disabled", func(t *testing.T) {
		l, buf := bufferLogger(DisabledLevel, false)

		l.Error("error message")

		assert.Empty(t, buf.String())
	})
}
