package provider

import (
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		wantModel string
	}{
		{
			name: "openai",
			cfg: Config{
				Type:   ProviderTypeOpenAI,
				APIKey: "sk-test",
				Model:  "gpt-4o",
			},
			wantModel: "gpt-4o",
		},
		{
			name: "openai default model",
			cfg: Config{
				Type:   ProviderTypeOpenAI,
				APIKey: "sk-test",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "openai missing api key",
			cfg: Config{
				Type: ProviderTypeOpenAI,
			},
			wantErr: true,
		},
		{
			name: "openrouter",
			cfg: Config{
				Type:   ProviderTypeOpenRouter,
				APIKey: "sk-or-test",
				Model:  "qwen/qwen3-coder",
			},
			wantModel: "qwen/qwen3-coder",
		},
		{
			name: "openrouter missing api key",
			cfg: Config{
				Type: ProviderTypeOpenRouter,
			},
			wantErr: true,
		},
		{
			name: "anthropic",
			cfg: Config{
				Type:   ProviderTypeAnthropic,
				APIKey: "sk-ant-test",
				Model:  "claude-sonnet-4-20250514",
			},
			wantModel: "claude-sonnet-4-20250514",
		},
		{
			name: "anthropic missing api key",
			cfg: Config{
				Type: ProviderTypeAnthropic,
			},
			wantErr: true,
		},
		{
			name: "ollama needs no api key",
			cfg: Config{
				Type:  ProviderTypeOllama,
				Model: "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name: "unknown type",
			cfg: Config{
				Type: ProviderType("gemini"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Model() != tt.wantModel {
				t.Errorf("expected model %q, got %q", tt.wantModel, p.Model())
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"openai", ProviderTypeOpenAI},
		{"openrouter", ProviderTypeOpenRouter},
		{"anthropic", ProviderTypeAnthropic},
		{"ollama", ProviderTypeOllama},
		{"something-else", ProviderType("something-else")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
