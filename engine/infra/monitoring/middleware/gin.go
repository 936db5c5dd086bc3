package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rexcellence/jarvis/engine/infra/monitoring/metrics"
	"github.com/rexcellence/jarvis/pkg/logger"
)

type httpInstruments struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
}

func newInstruments(meter metric.Meter) (*httpInstruments, error) {
	total, err := meter.Int64Counter(
		metrics.MetricNameWithSubsystem("http", "requests_total"),
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		metrics.MetricNameWithSubsystem("http", "request_duration_seconds"),
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.HTTPDurationBuckets...),
	)
	if err != nil {
		return nil, err
	}
	inFlight, err := meter.Int64UpDownCounter(
		metrics.MetricNameWithSubsystem("http", "requests_in_flight"),
		metric.WithDescription("Currently active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}
	return &httpInstruments{requestsTotal: total, requestDuration: duration, requestsInFlight: inFlight}, nil
}

// HTTPMetrics returns a Gin middleware that collects HTTP metrics. When the
// instruments cannot be created the middleware is a pass-through.
func HTTPMetrics(ctx context.Context, meter metric.Meter) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	inst, err := newInstruments(meter)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to create HTTP metrics instruments", "error", err)
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		reqCtx := c.Request.Context()
		inst.requestsInFlight.Add(reqCtx, 1)
		defer inst.requestsInFlight.Add(reqCtx, -1)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("path", path),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		inst.requestsTotal.Add(reqCtx, 1, attrs)
		inst.requestDuration.Record(reqCtx, time.Since(start).Seconds(), attrs)
	}
}
