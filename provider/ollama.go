package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"sgpt/model"
)

// OllamaProvider implements model.Provider against a local or remote
// Ollama server. No API key is required.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: Ollama server URL (default: "http://localhost:11434")
//   - model: default model (default: "llama3.1:latest")
//
// Returns an error if the baseURL does not parse.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Complete implements model.Provider.Complete with streaming support.
func (p *OllamaProvider) Complete(ctx context.Context, messages []model.Message, opts model.CompletionOptions, callback model.StreamCallback) error {
	stream := true
	req := &api.ChatRequest{
		Model:    opts.EffectiveModel(p),
		Messages: ConvertToOllamaMessages(messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"top_p":       opts.TopP,
		},
	}

	respFunc := func(resp api.ChatResponse) error {
		if callback != nil && resp.Message.Content != "" {
			return callback(resp.Message.Content)
		}
		return nil
	}

	if err := p.client.Chat(ctx, req, respFunc); err != nil {
		return fmt.Errorf("Ollama chat error: %w", err)
	}

	return nil
}

// Model implements model.Provider.Model.
func (p *OllamaProvider) Model() string {
	return p.model
}

// Ping implements model.Provider.Ping by listing local models.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.client.List(ctx); err != nil {
		return fmt.Errorf("Ollama ping failed: %w", err)
	}
	return nil
}
