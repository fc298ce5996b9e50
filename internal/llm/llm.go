// Package llm defines a provider-agnostic contract for text generation.
// Synthesis, intent classification and query rewriting all go through the
// same Provider so tests can substitute a fake.
package llm

import "context"

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Options carries optional generation parameters.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the provider's default model
}

// Option mutates Options.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider is the contract for any LLM backend.
type Provider interface {
	// Chat sends a chat history to the model and returns the response text.
	Chat(ctx context.Context, history []Message, opts ...Option) (string, error)

	// Generate sends a single user prompt to the model.
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
}
