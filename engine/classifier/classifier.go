package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rexcellence/jarvis/engine/taskplan"
	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Adapter turns free text into a task plan candidate. It is stateless and
// safe for concurrent use.
type Adapter struct {
	client      LLMClient
	contract    string
	temperature float64
	timeout     time.Duration
}

type Option func(*Adapter)

// WithTimeout bounds every classification call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithTemperature(t float64) Option {
	return func(a *Adapter) {
		a.temperature = t
	}
}

// NewAdapter creates an adapter over client.
func NewAdapter(client LLMClient, opts ...Option) (*Adapter, error) {
	if client == nil {
		return nil, fmt.Errorf("classifier client is required")
	}
	contract, err := SystemContract()
	if err != nil {
		return nil, err
	}
	a := &Adapter{client: client, contract: contract, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// New creates the production adapter from configuration.
func New(cfg *config.ClassifierConfig) (*Adapter, error) {
	client, err := NewOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapter(client, WithTimeout(cfg.Timeout), WithTemperature(cfg.Temperature))
}

// Classify sends rawText to the classifier. Empty text is a valid input.
//
// On transport failure it returns a nil candidate and an error matching
// ErrUnavailable. On unparseable output it returns an empty candidate together
// with an error matching ErrMalformedOutput; callers may proceed with it.
func (a *Adapter) Classify(ctx context.Context, rawText string) (*taskplan.Candidate, error) {
	log := logger.FromContext(ctx)
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	resp, err := a.client.GenerateContent(callCtx, &LLMRequest{
		SystemPrompt: a.contract,
		Messages:     []Message{{Role: RoleUser, Content: rawText}},
		Options: CallOptions{
			Temperature: a.temperature,
			UseJSONMode: true,
		},
	})
	if err != nil {
		return nil, unavailable(err)
	}
	content := ExtractJSON(resp.Content)
	if content == "" || !gjson.Valid(content) || !gjson.Parse(content).IsObject() {
		log.Warn("Classifier returned unparseable output", "output", truncate(resp.Content, 200))
		return taskplan.EmptyCandidate(), malformed(resp.Content, errors.New("no JSON object in output"))
	}
	return &taskplan.Candidate{Raw: json.RawMessage(content)}, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
