package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/rexcellence/jarvis/pkg/config"
)

// MaxMessageLength is the Bot API limit for a text message, in characters.
const MaxMessageLength = 4096

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramClient sends replies through the Bot API sendMessage method.
type TelegramClient struct {
	client  *resty.Client
	apiRoot string
	token   string
}

func NewTelegramClient(cfg *config.TelegramConfig) *TelegramClient {
	return &TelegramClient{
		client: resty.New().
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		apiRoot: strings.TrimRight(cfg.APIRoot, "/"),
		token:   cfg.BotToken.Value(),
	}
}

// Enabled reports whether a bot token is configured.
func (c *TelegramClient) Enabled() bool {
	return c.token != ""
}

// Send posts text to chatID.
func (c *TelegramClient) Send(ctx context.Context, chatID int64, text string) error {
	if !c.Enabled() {
		return &DeliveryError{Channel: ChannelTelegram, Err: ErrChannelDisabled}
	}
	payload := map[string]any{
		"chat_id": chatID,
		"text":    truncateText(text, MaxMessageLength),
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.apiRoot + "/bot" + c.token + "/sendMessage")
	if err != nil {
		return &DeliveryError{Channel: ChannelTelegram, Err: c.redact(err)}
	}
	body := resp.Body()
	if resp.StatusCode() >= 300 {
		return &DeliveryError{
			Channel:    ChannelTelegram,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("telegram api status=%d body=%s", resp.StatusCode(), strings.TrimSpace(string(body))),
		}
	}
	var base apiResponse
	if err := json.Unmarshal(body, &base); err != nil {
		return &DeliveryError{Channel: ChannelTelegram, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode telegram response: %w", err)}
	}
	if !base.OK {
		return &DeliveryError{
			Channel:    ChannelTelegram,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("telegram api error: %s", base.Description),
		}
	}
	return nil
}

// redact removes the bot token, which is part of the request URL, from err.
func (c *TelegramClient) redact(err error) error {
	msg := strings.ReplaceAll(err.Error(), c.token, "[REDACTED]")
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
