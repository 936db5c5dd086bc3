package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

// Dispatcher owns the two delivery channels. Each call is bounded by its
// channel's timeout, attempted once, logged and counted. Errors are returned
// for observation only.
type Dispatcher struct {
	telegram *TelegramClient
	sink     *SinkClient
	metrics  *Metrics
}

func NewDispatcher(telegram *TelegramClient, sink *SinkClient, metrics *Metrics) *Dispatcher {
	return &Dispatcher{telegram: telegram, sink: sink, metrics: metrics}
}

// NewDispatcherFromConfig builds both channels from configuration.
func NewDispatcherFromConfig(cfg *config.Config, metrics *Metrics) *Dispatcher {
	return NewDispatcher(NewTelegramClient(&cfg.Telegram), NewSinkClient(&cfg.Sink), metrics)
}

// ReplyToSender sends text to the chat the message came from.
func (d *Dispatcher) ReplyToSender(ctx context.Context, chatID int64, text string) error {
	start := time.Now()
	err := d.telegram.Send(ctx, chatID, text)
	d.observe(ctx, ChannelTelegram, err, start)
	return err
}

// ForwardToSink posts the envelope to the automation consumer.
func (d *Dispatcher) ForwardToSink(ctx context.Context, env Envelope) error {
	start := time.Now()
	err := d.sink.Send(ctx, env)
	d.observe(ctx, ChannelSink, err, start)
	return err
}

// Status reports which channels are configured.
func (d *Dispatcher) Status() map[Channel]bool {
	return map[Channel]bool{
		ChannelTelegram: d.telegram.Enabled(),
		ChannelSink:     d.sink.Enabled(),
	}
}

func (d *Dispatcher) observe(ctx context.Context, channel Channel, err error, start time.Time) {
	elapsed := time.Since(start)
	d.metrics.RecordAttempt(ctx, channel, err, elapsed)
	log := logger.FromContext(ctx).With("channel", string(channel), "duration", elapsed)
	switch {
	case err == nil:
		log.Debug("Delivery succeeded")
	case errors.Is(err, ErrChannelDisabled):
		log.Warn("Delivery skipped, channel not configured")
	default:
		log.Error("Delivery failed", "error", err)
	}
}
