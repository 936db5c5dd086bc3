package classifier

import "context"

// Role constants for message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// LLMRequest represents a request to the LLM, independent of provider
type LLMRequest struct {
	SystemPrompt string
	Messages     []Message
	Options      CallOptions
}

// Message represents a conversation message
type Message struct {
	Role    string
	Content string
}

// CallOptions represents options for the LLM call
type CallOptions struct {
	Temperature float64
	MaxTokens   int32
	UseJSONMode bool
}

// LLMResponse represents the response from the LLM
type LLMResponse struct {
	Content string
}

// LLMClient is the interface the classifier talks to
type LLMClient interface {
	// GenerateContent sends a request to the LLM and returns a response
	GenerateContent(ctx context.Context, req *LLMRequest) (*LLMResponse, error)
	// Close cleans up any resources held by the client
	Close() error
}
