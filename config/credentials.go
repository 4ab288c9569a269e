package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// credentialEnvVars maps provider ids to their conventional API key
// environment variables, which always win over the credentials file.
var credentialEnvVars = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
}

// CredentialStore holds API keys per provider id. Keys are held as plain
// values; managing authentication beyond that is out of scope.
type CredentialStore struct {
	credentials map[string]string
}

type credentialsFile struct {
	Keys map[string]string `toml:"keys"`
}

// LoadCredentials reads <dataDir>/credentials.toml, creating an empty
// template on first run. Missing file is not an error: env vars may be
// the only source of keys.
func LoadCredentials(dataDir string) (*CredentialStore, error) {
	store := &CredentialStore{credentials: make(map[string]string)}

	path := filepath.Join(dataDir, "credentials.toml")
	if !FileExists(path) {
		content := "# sgpt API credentials\n# [keys]\n# openai = \"sk-...\"\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return nil, fmt.Errorf("failed to write credentials template: %w", err)
		}
		return store, nil
	}

	var file credentialsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if file.Keys != nil {
		store.credentials = file.Keys
	}

	return store, nil
}

// APIKey returns the key for a provider id, preferring the conventional
// environment variable over the credentials file.
func (c *CredentialStore) APIKey(providerID string) string {
	if envVar, ok := credentialEnvVars[strings.ToLower(providerID)]; ok {
		if key := os.Getenv(envVar); key != "" {
			return key
		}
	}
	return c.credentials[strings.ToLower(providerID)]
}

