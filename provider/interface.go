// Package provider implements the remote completion capability behind
// the model.Provider interface.
//
// Four provider types are supported (OpenAI, OpenRouter, Anthropic,
// Ollama) through a common factory. The provider layer owns all type
// conversions between sgpt's provider-agnostic messages and each
// vendor SDK's request types; callers never see vendor types.
//
// Providers stream: each implementation yields response text to the
// StreamCallback chunk-by-chunk as it arrives, never buffering the full
// response first.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeAnthropic  ProviderType = "anthropic"
	ProviderTypeOllama     ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
