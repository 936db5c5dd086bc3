package server

import (
	"context"
	"fmt"
	"time"

	"github.com/rexcellence/jarvis/engine/classifier"
	"github.com/rexcellence/jarvis/engine/delivery"
	"github.com/rexcellence/jarvis/engine/infra/monitoring"
	"github.com/rexcellence/jarvis/engine/orchestrator"
	"github.com/rexcellence/jarvis/engine/webhook"
	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

// Readiness reports which outbound dependencies are configured.
type Readiness struct {
	Classifier bool `json:"classifier"`
	Telegram   bool `json:"telegram"`
	Sink       bool `json:"sink"`
}

// Ready reports whether every dependency is configured.
func (r Readiness) Ready() bool {
	return r.Classifier && r.Telegram && r.Sink
}

// Dependencies is the wired message pipeline behind the HTTP routes.
type Dependencies struct {
	Monitoring  *monitoring.Service
	Coordinator *orchestrator.Coordinator
	Receiver    *webhook.Receiver
	Readiness   Readiness
}

// NewDependencies builds the pipeline from cfg. The returned cleanup releases
// the classifier and the metrics exporter in reverse order.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	log := logger.FromContext(ctx)
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	mon := monitoring.NewMonitoringServiceWithFallback(ctx, &cfg.Monitoring)
	cleanups = append(cleanups, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), monitoringShutdownTimeout)
		defer cancel()
		if err := mon.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown monitoring", "error", err)
		}
	})
	meter := mon.Meter()

	deliveryMetrics, err := delivery.NewMetrics(meter)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create delivery metrics: %w", err)
	}
	dispatcher := delivery.NewDispatcherFromConfig(cfg, deliveryMetrics)

	cl, err := classifier.New(&cfg.Classifier)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	cleanups = append(cleanups, func() {
		if err := cl.Close(); err != nil {
			log.Error("Failed to close classifier", "error", err)
		}
	})

	orchMetrics, err := orchestrator.NewMetrics(meter)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create orchestrator metrics: %w", err)
	}
	coordinator := orchestrator.NewCoordinator(
		cl,
		dispatcher,
		orchestrator.WithMetrics(orchMetrics),
		orchestrator.WithSource(cfg.Sink.Source),
	)

	webhookMetrics, err := webhook.NewMetrics(ctx, meter)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create webhook metrics: %w", err)
	}
	receiver := webhook.NewReceiver(coordinator, cfg.Webhook.MaxBody, webhook.WithMetrics(webhookMetrics))

	status := dispatcher.Status()
	deps := &Dependencies{
		Monitoring:  mon,
		Coordinator: coordinator,
		Receiver:    receiver,
		Readiness: Readiness{
			Classifier: cfg.Classifier.APIKey.Value() != "",
			Telegram:   status[delivery.ChannelTelegram],
			Sink:       status[delivery.ChannelSink],
		},
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	log.Debug("Dependencies ready",
		"classifier", deps.Readiness.Classifier,
		"telegram", deps.Readiness.Telegram,
		"sink", deps.Readiness.Sink,
		"monitoring", mon.IsInitialized(),
	)
	return deps, cleanup, nil
}

// drain waits for accepted messages to finish within timeout.
func (d *Dependencies) drain(ctx context.Context, timeout time.Duration) error {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return d.Receiver.Drain(drainCtx)
}
