package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	monitoringmetrics "github.com/rexcellence/jarvis/engine/infra/monitoring/metrics"
	"github.com/rexcellence/jarvis/engine/taskplan"
)

const (
	classifyResultOK          = "ok"
	classifyResultMalformed   = "malformed"
	classifyResultUnavailable = "unavailable"
)

// Metrics instruments the pipeline. A nil *Metrics records nothing.
type Metrics struct {
	messagesTotal    metric.Int64Counter
	coercionsTotal   metric.Int64Counter
	classifyDuration metric.Float64Histogram
	inFlight         metric.Int64UpDownCounter
}

// NewMetrics registers the pipeline instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		return nil, nil
	}
	m := &Metrics{}
	var err error
	m.messagesTotal, err = meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("orchestrator", "messages_total"),
		metric.WithDescription("Messages processed by terminal state"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator messages counter: %w", err)
	}
	m.coercionsTotal, err = meter.Int64Counter(
		monitoringmetrics.MetricNameWithSubsystem("taskplan", "coercions_total"),
		metric.WithDescription("Classifier output fields that did not conform and were coerced"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create taskplan coercions counter: %w", err)
	}
	m.classifyDuration, err = meter.Float64Histogram(
		monitoringmetrics.MetricNameWithSubsystem("orchestrator", "classify_duration_seconds"),
		metric.WithDescription("Classification call latency by result"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(monitoringmetrics.CallDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create classify duration histogram: %w", err)
	}
	m.inFlight, err = meter.Int64UpDownCounter(
		monitoringmetrics.MetricNameWithSubsystem("orchestrator", "in_flight"),
		metric.WithDescription("Messages currently in the pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator in-flight gauge: %w", err)
	}
	return m, nil
}

func (m *Metrics) recordClassify(ctx context.Context, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.classifyDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) recordCoercions(ctx context.Context, fields []taskplan.FieldReport) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.coercionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("field", fieldLabel(f.Path))))
	}
}

func (m *Metrics) recordOutcome(ctx context.Context, state State) {
	if m == nil {
		return
	}
	m.messagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(state))))
}

func (m *Metrics) addInFlight(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, delta)
}

// fieldLabel drops list indices from a field path to bound label cardinality.
func fieldLabel(path string) string {
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}
