package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature   float64
	TopP          float64
	MaxTokens     int
	Model         string // Override default model
	APIKey        string
	DisableSearch bool
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithDisableSearch turns off web grounding for prompts that must answer
// from the supplied content only.
func WithDisableSearch(disable bool) Option {
	return func(o *Options) {
		o.DisableSearch = disable
	}
}

// Apply folds options over a copy of base.
func Apply(base Options, options ...Option) Options {
	for _, o := range options {
		o(&base)
	}
	return base
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
}
