package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/rexcellence/jarvis/pkg/config"
)

func TestFlattenConfig(t *testing.T) {
	t.Run("Should redact secrets and render durations", func(t *testing.T) {
		cfg := pkgconfig.Default()
		cfg.Classifier.APIKey = "sk-live-123"

		flat := flattenConfig(cfg)

		assert.Equal(t, "[REDACTED]", flat["classifier.api_key"])
		assert.Equal(t, "", flat["telegram.bot_token"])
		assert.Equal(t, "30s", flat["classifier.timeout"])
		assert.Equal(t, 3000, flat["server.port"])
	})
}

func TestFormatConfigOutput(t *testing.T) {
	cfg := pkgconfig.Default()
	cfg.Telegram.BotToken = "123:secret"

	t.Run("Should print a sorted table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatConfigOutput(&buf, cfg, nil, "table"))

		out := buf.String()
		assert.Contains(t, out, "KEY")
		assert.Contains(t, out, "server.port")
		assert.NotContains(t, out, "123:secret")
		assert.Less(t, bytes.Index(buf.Bytes(), []byte("classifier.model")), bytes.Index(buf.Bytes(), []byte("server.port")))
	})

	t.Run("Should include sources when requested", func(t *testing.T) {
		var buf bytes.Buffer
		sources := map[string]pkgconfig.SourceType{"server.port": pkgconfig.SourceEnv}
		require.NoError(t, formatConfigOutput(&buf, cfg, sources, "table"))

		assert.Contains(t, buf.String(), "SOURCE")
		assert.Contains(t, buf.String(), "env")
	})

	t.Run("Should print redacted JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatConfigOutput(&buf, cfg, nil, "json"))

		assert.Contains(t, buf.String(), `"telegram.bot_token": "[REDACTED]"`)
	})

	t.Run("Should print redacted YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatConfigOutput(&buf, cfg, nil, "yaml"))

		assert.Contains(t, buf.String(), "[REDACTED]")
		assert.NotContains(t, buf.String(), "123:secret")
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		assert.Error(t, formatConfigOutput(&bytes.Buffer{}, cfg, nil, "xml"))
	})
}
