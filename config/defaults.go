package config

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: GetDefaultDataDir(),
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DefaultProvider: "openai",
		DefaultModel:    "gpt-4o-mini",
		Temperature:     0.1,
		TopP:            1.0,
		ExecuteShell:    false,
		CacheEntries:    100,
		ChatHistory:     100,
	}
}

func GenerateSystemConfigTemplate() string {
	return `# sgpt System Configuration
# Location: ~/.config/sgpt/settings.toml
# This file uses TOML format: https://toml.io

# Directory where conversations and user config are stored
data_directory = "~/.local/share/sgpt"
`
}

func GenerateUserConfigTemplate() string {
	return `# sgpt User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Completion provider: openai, openrouter, anthropic or ollama
default_provider = "openai"

# Model to use when --model is not given
default_model = "gpt-4o-mini"

# Generation defaults, overridable per invocation
temperature = 0.1
top_p = 1.0

# Run generated shell commands without asking (Execute becomes the
# default action in the shell prompt)
default_execute_shell_cmd = false

# Request cache size; least recently used entries are evicted beyond this
cache_entries = 100

# Number of transcript messages sent back to the provider per request
chat_history_length = 100

# Per-provider overrides (optional)
# [[providers]]
# id = "ollama"
# base_url = "http://localhost:11434"
# model = "llama3.1:latest"
`
}
