package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricName(t *testing.T) {
	t.Run("Should add the prefix", func(t *testing.T) {
		assert.Equal(t, "jarvis_requests_total", MetricName("requests_total"))
	})
	t.Run("Should keep an existing prefix", func(t *testing.T) {
		assert.Equal(t, "jarvis_custom", MetricName("jarvis_custom"))
	})
}

func TestMetricNameWithSubsystem(t *testing.T) {
	t.Run("Should join subsystem and name", func(t *testing.T) {
		assert.Equal(t, "jarvis_delivery_attempts_total", MetricNameWithSubsystem("delivery", "attempts_total"))
	})
	t.Run("Should trim underscores from the subsystem", func(t *testing.T) {
		assert.Equal(t, "jarvis_webhook_received_total", MetricNameWithSubsystem("_webhook_", "received_total"))
	})
	t.Run("Should handle an empty name", func(t *testing.T) {
		assert.Equal(t, "jarvis_orchestrator", MetricNameWithSubsystem("orchestrator", ""))
	})
}
