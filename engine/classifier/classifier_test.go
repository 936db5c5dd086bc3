package classifier

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rexcellence/jarvis/engine/taskplan"
	"github.com/rexcellence/jarvis/pkg/config"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*LLMResponse)
	return resp, args.Error(1)
}

func (m *mockClient) Close() error {
	return m.Called().Error(0)
}

type blockingClient struct{}

func (blockingClient) GenerateContent(ctx context.Context, _ *LLMRequest) (*LLMResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClient) Close() error { return nil }

func TestAdapter_Classify(t *testing.T) {
	t.Run("Should send the contract and the text in JSON mode", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.MatchedBy(func(req *LLMRequest) bool {
			return req.Options.UseJSONMode &&
				req.Options.Temperature == 0.2 &&
				len(req.Messages) == 1 &&
				req.Messages[0].Role == RoleUser &&
				req.Messages[0].Content == "Besoin d'un audit pour RenoRex" &&
				req.SystemPrompt != ""
		})).Return(&LLMResponse{Content: `{"intent":"audit_360"}`}, nil).Once()
		adapter, err := NewAdapter(client, WithTemperature(0.2))
		require.NoError(t, err)

		c, err := adapter.Classify(context.Background(), "Besoin d'un audit pour RenoRex")

		require.NoError(t, err)
		assert.JSONEq(t, `{"intent":"audit_360"}`, string(c.Raw))
		client.AssertExpectations(t)
	})

	t.Run("Should accept empty text", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.MatchedBy(func(req *LLMRequest) bool {
			return req.Messages[0].Content == ""
		})).Return(&LLMResponse{Content: `{}`}, nil).Once()
		adapter, err := NewAdapter(client)
		require.NoError(t, err)

		c, err := adapter.Classify(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, "{}", string(c.Raw))
	})

	t.Run("Should strip markdown fences and trailing commas", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.Anything).
			Return(&LLMResponse{Content: "Voici :\n```json\n{\"intent\": \"content\", \"funnel_focus\": [\"revenue\",],}\n```"}, nil)
		adapter, err := NewAdapter(client)
		require.NoError(t, err)

		c, err := adapter.Classify(context.Background(), "post LinkedIn")

		require.NoError(t, err)
		assert.JSONEq(t, `{"intent":"content","funnel_focus":["revenue"]}`, string(c.Raw))
	})

	t.Run("Should return an empty candidate on malformed output", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.Anything).
			Return(&LLMResponse{Content: "Je ne peux pas répondre en JSON."}, nil)
		adapter, err := NewAdapter(client)
		require.NoError(t, err)

		c, err := adapter.Classify(context.Background(), "salut")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedOutput)
		assert.NotErrorIs(t, err, ErrUnavailable)
		require.NotNil(t, c)
		assert.Equal(t, taskplan.EmptyCandidate(), c)
		var classifyErr *Error
		require.ErrorAs(t, err, &classifyErr)
		assert.Equal(t, "Je ne peux pas répondre en JSON.", classifyErr.Output)
	})

	t.Run("Should treat a JSON array as malformed", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.Anything).Return(&LLMResponse{Content: `[1, 2]`}, nil)
		adapter, err := NewAdapter(client)
		require.NoError(t, err)

		_, err = adapter.Classify(context.Background(), "salut")

		assert.ErrorIs(t, err, ErrMalformedOutput)
	})

	t.Run("Should report transport failures as unavailable", func(t *testing.T) {
		client := &mockClient{}
		client.On("GenerateContent", mock.Anything, mock.Anything).
			Return(nil, errors.New("API returned unexpected status code: 503"))
		adapter, err := NewAdapter(client)
		require.NoError(t, err)

		c, err := adapter.Classify(context.Background(), "salut")

		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrUnavailable)
		var classifyErr *Error
		require.ErrorAs(t, err, &classifyErr)
		assert.Equal(t, http.StatusServiceUnavailable, classifyErr.StatusCode)
	})

	t.Run("Should bound the call with its timeout", func(t *testing.T) {
		adapter, err := NewAdapter(blockingClient{}, WithTimeout(20*time.Millisecond))
		require.NoError(t, err)

		start := time.Now()
		_, err = adapter.Classify(context.Background(), "salut")

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Should be unavailable without an API key", func(t *testing.T) {
		adapter, err := New(&config.Default().Classifier)
		require.NoError(t, err)

		_, err = adapter.Classify(context.Background(), "salut")

		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestNewAdapter(t *testing.T) {
	t.Run("Should require a client", func(t *testing.T) {
		_, err := NewAdapter(nil)
		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("Should cut on rune boundaries", func(t *testing.T) {
		out := truncate(strings.Repeat("é", 10), 3)

		assert.Equal(t, "ééé…", out)
		assert.True(t, utf8.ValidString(out))
	})

	t.Run("Should keep short text", func(t *testing.T) {
		assert.Equal(t, "noté", truncate("  noté ", 10))
	})
}
