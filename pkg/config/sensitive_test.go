package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSensitiveString(t *testing.T) {
	t.Run("Should redact non-empty values", func(t *testing.T) {
		s := SensitiveString("sk-live-123")
		assert.Equal(t, "[REDACTED]", s.String())
		assert.Equal(t, "sk-live-123", s.Value())
	})

	t.Run("Should keep empty values empty", func(t *testing.T) {
		assert.Equal(t, "", SensitiveString("").String())
	})

	t.Run("Should marshal as redacted JSON", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Token SensitiveString `json:"token"`
		}{Token: "123:abc"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"token":"[REDACTED]"}`, string(data))
	})

	t.Run("Should marshal as redacted YAML", func(t *testing.T) {
		data, err := yaml.Marshal(map[string]SensitiveString{"token": "123:abc"})
		require.NoError(t, err)
		assert.Contains(t, string(data), "[REDACTED]")
		assert.NotContains(t, string(data), "123:abc")
	})
}
