package classifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rexcellence/jarvis/pkg/config"
)

// LangChainAdapter adapts langchaingo to our LLMClient interface
type LangChainAdapter struct {
	model llms.Model
}

// NewLangChainAdapter wraps an existing langchaingo model
func NewLangChainAdapter(model llms.Model) *LangChainAdapter {
	return &LangChainAdapter{model: model}
}

// NewOpenAIClient builds the production client. Without an API key it returns
// a client whose every call fails as unavailable.
func NewOpenAIClient(cfg *config.ClassifierConfig) (LLMClient, error) {
	if cfg.APIKey.Value() == "" {
		return disabledClient{}, nil
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout + 5*time.Second}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai model: %w", err)
	}
	return NewLangChainAdapter(model), nil
}

// GenerateContent implements LLMClient interface
func (a *LangChainAdapter) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	response, err := a.model.GenerateContent(ctx, a.convertMessages(req), a.buildCallOptions(req)...)
	if err != nil {
		return nil, fmt.Errorf("langchain GenerateContent failed: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}
	return &LLMResponse{Content: response.Choices[0].Content}, nil
}

// Close implements LLMClient interface
func (a *LangChainAdapter) Close() error {
	return nil
}

// convertMessages converts our Message format to langchain MessageContent
func (a *LangChainAdapter) convertMessages(req *LLMRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		msgType := llms.ChatMessageTypeHuman
		if msg.Role == RoleSystem {
			msgType = llms.ChatMessageTypeSystem
		}
		messages = append(messages, llms.TextParts(msgType, msg.Content))
	}
	return messages
}

// buildCallOptions builds langchain call options from our request
func (a *LangChainAdapter) buildCallOptions(req *LLMRequest) []llms.CallOption {
	var options []llms.CallOption
	if req.Options.Temperature > 0 {
		options = append(options, llms.WithTemperature(req.Options.Temperature))
	}
	if req.Options.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(int(req.Options.MaxTokens)))
	}
	if req.Options.UseJSONMode {
		options = append(options, llms.WithJSONMode())
	}
	return options
}

type disabledClient struct{}

func (disabledClient) GenerateContent(context.Context, *LLMRequest) (*LLMResponse, error) {
	return nil, fmt.Errorf("classifier api key is not configured")
}

func (disabledClient) Close() error {
	return nil
}
