package webhook

import (
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestMetrics_Init(t *testing.T) {
	t.Run("Should init without panic", func(_ *testing.T) {
		m, err := NewMetrics(t.Context(), noop.NewMeterProvider().Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics failed: %v", err)
		}
		ctx := t.Context()
		m.OnReceived(ctx, 512)
		m.OnAccepted(ctx)
		m.OnIgnored(ctx, reasonNoMessage)
		m.OnInvalid(ctx, reasonInvalid)
		m.ObservePipeline(ctx, "dispatched", time.Millisecond)
		m.IncrementPending(ctx)
		m.DecrementPending(ctx)
	})

	t.Run("Should tolerate a nil receiver", func(_ *testing.T) {
		var m *Metrics
		ctx := t.Context()
		m.OnReceived(ctx, 1)
		m.OnAccepted(ctx)
		m.OnIgnored(ctx, reasonNoChat)
		m.IncrementPending(ctx)
	})
}
