package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rexcellence/jarvis/engine/infra/monitoring/metrics"
	"github.com/rexcellence/jarvis/pkg/logger"
	"github.com/rexcellence/jarvis/pkg/version"
)

type systemMetrics struct {
	registration metric.Registration
}

// initSystemMetrics records build info and registers the uptime gauge.
func initSystemMetrics(ctx context.Context, meter metric.Meter) *systemMetrics {
	log := logger.FromContext(ctx)
	sm := &systemMetrics{}
	info := version.Get()
	buildInfo, err := meter.Float64Gauge(
		metrics.MetricName("build_info"),
		metric.WithDescription("Build information (value=1)"),
	)
	if err != nil {
		log.Error("Failed to create build info gauge", "error", err)
	} else {
		buildInfo.Record(ctx, 1, metric.WithAttributes(
			attribute.String("version", info.Version),
			attribute.String("commit_hash", info.CommitHash),
			attribute.String("go_version", info.GoVersion),
		))
	}
	uptime, err := meter.Float64ObservableGauge(
		metrics.MetricName("uptime_seconds"),
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		log.Error("Failed to create uptime gauge", "error", err)
		return sm
	}
	start := time.Now()
	sm.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveFloat64(uptime, time.Since(start).Seconds())
		return nil
	}, uptime)
	if err != nil {
		log.Error("Failed to register uptime callback", "error", err)
	}
	return sm
}

func (sm *systemMetrics) unregister(ctx context.Context) {
	if sm.registration == nil {
		return
	}
	if err := sm.registration.Unregister(); err != nil {
		logger.FromContext(ctx).Error("Failed to unregister uptime callback", "error", err)
	}
	sm.registration = nil
}
