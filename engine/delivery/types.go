package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/rexcellence/jarvis/engine/taskplan"
)

// Channel names a delivery target.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelSink     Channel = "sink"
)

// ErrChannelDisabled is returned when a channel has no credentials or URL configured.
var ErrChannelDisabled = errors.New("delivery channel disabled")

// DeliveryError describes a failed delivery attempt on one channel.
type DeliveryError struct {
	Channel    Channel
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s delivery failed (status %d): %v", e.Channel, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Envelope is the body forwarded to the automation sink.
type Envelope struct {
	Source     string            `json:"source"`
	ChatID     int64             `json:"chatId"`
	SenderName string            `json:"senderName"`
	RawText    string            `json:"rawText"`
	Plan       taskplan.TaskPlan `json:"plan"`
	Timestamp  string            `json:"timestamp"`
}

// NewEnvelope stamps the envelope with at, formatted as RFC 3339.
func NewEnvelope(source string, chatID int64, senderName, rawText string, plan taskplan.TaskPlan, at time.Time) Envelope {
	return Envelope{
		Source:     source,
		ChatID:     chatID,
		SenderName: senderName,
		RawText:    rawText,
		Plan:       plan,
		Timestamp:  at.UTC().Format(time.RFC3339),
	}
}
