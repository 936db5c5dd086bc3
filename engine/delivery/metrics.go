package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	monitoringmetrics "github.com/rexcellence/jarvis/engine/infra/monitoring/metrics"
)

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeDisabled = "disabled"
)

// Metrics instruments delivery attempts. A nil *Metrics records nothing.
type Metrics struct {
	attemptsTotal metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewMetrics registers the delivery instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}
	attempts, err := meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("delivery", "attempts_total"),
		metric.WithDescription("Delivery attempts by channel and outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery attempts counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem("delivery", "duration_seconds"),
		metric.WithDescription("Delivery call latency by channel"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.CallDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery duration histogram: %w", err)
	}
	return &Metrics{attemptsTotal: attempts, duration: duration}, nil
}

func (m *Metrics) RecordAttempt(ctx context.Context, channel Channel, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attemptsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", string(channel)),
		attribute.String("outcome", outcomeOf(err)),
	))
	if !errors.Is(err, ErrChannelDisabled) {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("channel", string(channel))))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrChannelDisabled):
		return outcomeDisabled
	default:
		return outcomeFailure
	}
}
