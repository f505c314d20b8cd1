// Package genai wraps the hosted language-model provider used to phrase
// answers and embed corpus entries. The chat pipeline treats it as
// optional: when the provider is disabled or unreachable, callers fall
// back to template answers.
package genai

import (
	"context"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of provider input.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatRequest is a generation call.
type ChatRequest struct {
	SystemPrompt string
	Messages     []ChatMessage

	// Zero values defer to the provider configuration.
	Temperature float64
	MaxTokens   int
}

// ChatResponse carries the generated turn plus usage accounting.
type ChatResponse struct {
	Content      string
	Model        string
	FinishReason string
	InputTokens  int
	OutputTokens int
}

// Provider is the generation and embedding port.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// disabledProvider is wired when generation is turned off in config.
type disabledProvider struct{}

// NewDisabledProvider returns a provider whose every call reports the
// backend as unavailable.
func NewDisabledProvider() Provider { return disabledProvider{} }

func (disabledProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return nil, errors.New(errors.ErrCodeProviderUnavailable, "generation is disabled")
}

func (disabledProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New(errors.ErrCodeProviderUnavailable, "generation is disabled")
}

func (disabledProvider) Name() string { return "disabled" }
