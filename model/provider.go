package model

import "context"

// Provider abstracts LLM provider implementations (OpenAI, OpenRouter,
// Anthropic, Ollama) using provider-agnostic types from the model layer.
//
// The interface lives in the model package (not provider) to avoid import
// cycles: provider implementations import model, and callers can hold a
// Provider without importing the provider package.
type Provider interface {
	// Complete sends messages and streams the response back via callback.
	// The callback is invoked once per chunk, in arrival order; the caller
	// assembles the final text. Implementations must not invoke the
	// callback after returning an error.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions, callback StreamCallback) error

	// Model returns the model name used when CompletionOptions.Model is empty.
	Model() string

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// StreamCallback is called for each chunk of a streamed response.
// Returning an error aborts the stream.
type StreamCallback func(chunk string) error

// CompletionOptions carries the per-request generation parameters.
// Every field that affects completion content also feeds the cache
// fingerprint, so the zero value is never used directly; callers fill
// it from config defaults and CLI flags.
type CompletionOptions struct {
	Model       string  // overrides the provider default when non-empty
	Temperature float64 // randomness, 0.0-2.0
	TopP        float64 // nucleus sampling bound, 0.1-1.0
}

// EffectiveModel resolves the model for a request against the provider default.
func (o CompletionOptions) EffectiveModel(p Provider) string {
	if o.Model != "" {
		return o.Model
	}
	return p.Model()
}
