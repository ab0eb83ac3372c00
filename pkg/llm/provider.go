package llm

import (
	"context"
)

// Message is a chat turn in a provider-agnostic shape.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option tunes a single call without widening the interface.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override the provider's default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider is the opaque text-generation capability the negotiation
// engine calls for facet discovery and for the final answer. The engine
// bounds every call with a context deadline; providers must honor it.
type LLMProvider interface {
	// Chat sends a conversation to the model and returns the reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt (convenience wrapper over Chat).
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
