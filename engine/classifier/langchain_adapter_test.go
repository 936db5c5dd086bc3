package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	response *llms.ContentResponse
	err      error
}

func (s *stubModel) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	s.messages = messages
	for _, opt := range options {
		opt(&s.options)
	}
	return s.response, s.err
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestLangChainAdapter_GenerateContent(t *testing.T) {
	t.Run("Should convert the request and read the first choice", func(t *testing.T) {
		model := &stubModel{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: `{"ok":true}`}}}}
		adapter := NewLangChainAdapter(model)

		resp, err := adapter.GenerateContent(context.Background(), &LLMRequest{
			SystemPrompt: "contract",
			Messages:     []Message{{Role: RoleUser, Content: "Hello"}},
			Options:      CallOptions{Temperature: 0.2, UseJSONMode: true},
		})

		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, resp.Content)
		require.Len(t, model.messages, 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
		assert.Equal(t, "contract", model.messages[0].Parts[0].(llms.TextContent).Text)
		assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
		assert.Equal(t, "Hello", model.messages[1].Parts[0].(llms.TextContent).Text)
		assert.True(t, model.options.JSONMode)
		assert.InDelta(t, 0.2, model.options.Temperature, 1e-9)
	})

	t.Run("Should fail on an empty response", func(t *testing.T) {
		adapter := NewLangChainAdapter(&stubModel{response: &llms.ContentResponse{}})

		_, err := adapter.GenerateContent(context.Background(), &LLMRequest{})

		assert.Error(t, err)
	})

	t.Run("Should wrap model errors", func(t *testing.T) {
		cause := errors.New("boom")
		adapter := NewLangChainAdapter(&stubModel{err: cause})

		_, err := adapter.GenerateContent(context.Background(), &LLMRequest{})

		assert.ErrorIs(t, err, cause)
	})
}
