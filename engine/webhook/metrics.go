package webhook

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	monitoringmetrics "github.com/rexcellence/jarvis/engine/infra/monitoring/metrics"
)

const (
	reasonNoMessage = "no_message"
	reasonNoChat    = "no_chat"
	reasonInvalid   = "invalid_json"
	reasonTooLarge  = "too_large"
	reasonDraining  = "draining"
)

// Metrics provides instrumentation for webhook processing
type Metrics struct {
	meter             metric.Meter
	receivedTotal     metric.Int64Counter
	acceptedTotal     metric.Int64Counter
	ignoredTotal      metric.Int64Counter
	invalidTotal      metric.Int64Counter
	payloadHistogram  metric.Int64Histogram
	pipelineHistogram metric.Float64Histogram
	pendingGauge      metric.Int64UpDownCounter
}

// NewMetrics initializes webhook metrics using the provided meter
func NewMetrics(_ context.Context, meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}
	if err := m.init(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) init() error {
	if m.meter == nil {
		return nil
	}
	if err := m.initCounters(); err != nil {
		return err
	}
	return m.initHistograms()
}

func (m *Metrics) initCounters() error {
	counterDefs := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		errLabel    string
	}{
		{&m.receivedTotal, "received_total", "Total webhook requests received", "received"},
		{&m.acceptedTotal, "accepted_total", "Total chat messages handed to the pipeline", "accepted"},
		{&m.ignoredTotal, "ignored_total", "Total updates acknowledged without processing", "ignored"},
		{&m.invalidTotal, "invalid_total", "Total webhook requests with an unreadable body", "invalid"},
	}
	for _, def := range counterDefs {
		counter, err := m.registerInt64Counter(def.name, def.description, def.errLabel)
		if err != nil {
			return err
		}
		*def.target = counter
	}
	gauge, err := m.meter.Int64UpDownCounter(
		monitoringmetrics.MetricNameWithSubsystem("webhook", "pending_messages"),
		metric.WithDescription("Number of accepted messages whose pipeline has not finished"),
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook pending gauge: %w", err)
	}
	m.pendingGauge = gauge
	return nil
}

func (m *Metrics) registerInt64Counter(name, description, errLabel string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("webhook", name),
		metric.WithDescription(description),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook %s counter: %w", errLabel, err)
	}
	return counter, nil
}

func (m *Metrics) initHistograms() error {
	var err error
	m.payloadHistogram, err = m.meter.Int64Histogram(
		monitoringmetrics.MetricNameWithSubsystem("webhook", "payload_size_bytes"),
		metric.WithDescription("Size distribution of webhook payloads"),
		metric.WithUnit("bytes"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000),
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook payload size histogram: %w", err)
	}
	m.pipelineHistogram, err = m.meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem("webhook", "pipeline_duration_seconds"),
		metric.WithDescription("Time from acceptance to the end of the message pipeline"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.CallDurationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook pipeline duration histogram: %w", err)
	}
	return nil
}

func (m *Metrics) OnReceived(ctx context.Context, payloadBytes int) {
	if m == nil {
		return
	}
	if m.receivedTotal != nil {
		m.receivedTotal.Add(ctx, 1)
	}
	if m.payloadHistogram != nil && payloadBytes >= 0 {
		m.payloadHistogram.Record(ctx, int64(payloadBytes))
	}
}

func (m *Metrics) OnAccepted(ctx context.Context) {
	if m != nil && m.acceptedTotal != nil {
		m.acceptedTotal.Add(ctx, 1)
	}
}

func (m *Metrics) OnIgnored(ctx context.Context, reason string) {
	if m != nil && m.ignoredTotal != nil {
		m.ignoredTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) OnInvalid(ctx context.Context, reason string) {
	if m != nil && m.invalidTotal != nil {
		m.invalidTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// ObservePipeline records how long an accepted message took and its terminal state.
func (m *Metrics) ObservePipeline(ctx context.Context, state string, d time.Duration) {
	if m != nil && m.pipelineHistogram != nil {
		m.pipelineHistogram.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("state", state)))
	}
}

func (m *Metrics) IncrementPending(ctx context.Context) {
	if m != nil && m.pendingGauge != nil {
		m.pendingGauge.Add(ctx, 1)
	}
}

func (m *Metrics) DecrementPending(ctx context.Context) {
	if m != nil && m.pendingGauge != nil {
		m.pendingGauge.Add(ctx, -1)
	}
}
