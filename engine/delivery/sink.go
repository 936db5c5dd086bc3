package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/rexcellence/jarvis/pkg/config"
)

const maxErrorBody = 512

// SinkClient posts envelopes to the automation ingestion endpoint.
type SinkClient struct {
	client *resty.Client
	url    string
}

func NewSinkClient(cfg *config.SinkConfig) *SinkClient {
	return &SinkClient{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json"),
		url: cfg.URL,
	}
}

// Enabled reports whether a sink URL is configured.
func (c *SinkClient) Enabled() bool {
	return c.url != ""
}

// Send posts env as JSON. Any status outside 2xx is a failure.
func (c *SinkClient) Send(ctx context.Context, env Envelope) error {
	if !c.Enabled() {
		return &DeliveryError{Channel: ChannelSink, Err: ErrChannelDisabled}
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(env).
		Post(c.url)
	if err != nil {
		return &DeliveryError{Channel: ChannelSink, Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		body := truncateText(strings.TrimSpace(string(resp.Body())), maxErrorBody)
		return &DeliveryError{
			Channel:    ChannelSink,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("sink status=%d body=%s", resp.StatusCode(), body),
		}
	}
	return nil
}
