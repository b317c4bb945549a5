// Provider interface and the shared base embedded by backends
package llm

import (
	"context"
	"fmt"
	"time"
)

// DefaultTemperature is the sampling temperature used when the caller does
// not provide one
const DefaultTemperature float32 = 0.6

// DefaultMaxTokens is the output token limit used by backends that do not
// define their own
const DefaultMaxTokens = 4096

// HealthCheckTimeout bounds the low-cost call made by ValidateConnection
const HealthCheckTimeout = 5 * time.Second

// Provider defines the capability set that every LLM backend must implement
type Provider interface {
	// Name returns the backend identifier (anthropic, openai, gemini, ...)
	Name() string

	// Model returns the model identifier requests are sent to
	Model() string

	// Generate sends the history to the backend and returns the reply.
	// Backend failures never escape: they are returned as a string
	// starting with "Error:".
	Generate(ctx context.Context, history []Message, opts ...GenerateOption) string

	// ValidateConnection performs a minimal call to check that the
	// configured key and model are usable
	ValidateConnection(ctx context.Context) bool

	// FormatContextMessage renders one content block for inclusion in a
	// user message
	FormatContextMessage(content, label string) string
}

// GenerateOptions holds the per-call generation parameters
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// GenerateOption customizes a single Generate call
type GenerateOption func(*GenerateOptions)

// WithTemperature overrides the sampling temperature
func WithTemperature(t float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = t
	}
}

// WithMaxTokens overrides the output token limit
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// ApplyGenerateOptions resolves the options against the backend's default
// output token limit
func ApplyGenerateOptions(defaultMaxTokens int, opts ...GenerateOption) GenerateOptions {
	if defaultMaxTokens <= 0 {
		defaultMaxTokens = DefaultMaxTokens
	}
	o := GenerateOptions{
		Temperature: DefaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Base holds the fields shared by every backend. Backends embed it to get
// Name, Model and FormatContextMessage.
type Base struct {
	provider  string
	model     string
	maxTokens int
}

// NewBase creates the shared part of a backend. A non-positive maxTokens
// falls back to DefaultMaxTokens.
func NewBase(provider, model string, maxTokens int) Base {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return Base{provider: provider, model: model, maxTokens: maxTokens}
}

// Name returns the backend identifier
func (b Base) Name() string {
	return b.provider
}

// Model returns the model identifier
func (b Base) Model() string {
	return b.model
}

// MaxTokens returns the default output token limit of the backend
func (b Base) MaxTokens() int {
	return b.maxTokens
}

// Options resolves per-call options against the backend defaults
func (b Base) Options(opts ...GenerateOption) GenerateOptions {
	return ApplyGenerateOptions(b.maxTokens, opts...)
}

// FormatContextMessage renders content with a "File:" header when a label is
// given, or as a plain fenced block otherwise
func (b Base) FormatContextMessage(content, label string) string {
	return FormatContextMessage(content, label)
}

// FormatContextMessage is the default rendering of a context block
func FormatContextMessage(content, label string) string {
	if label != "" {
		return fmt.Sprintf("File: %s\n\n%s", label, content)
	}
	return fmt.Sprintf("```\n%s\n```", content)
}
