package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	ID      string `toml:"id"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

type UserConfig struct {
	DefaultProvider string           `toml:"default_provider"`
	DefaultModel    string           `toml:"default_model"`
	Temperature     float64          `toml:"temperature"`
	TopP            float64          `toml:"top_p"`
	ExecuteShell    bool             `toml:"default_execute_shell_cmd"`
	CacheEntries    int              `toml:"cache_entries"`
	ChatHistory     int              `toml:"chat_history_length"`
	Providers       []ProviderConfig `toml:"providers,omitempty"`
}

type Config struct {
	DataDirectory   string
	DefaultProvider string
	DefaultModel    string
	Temperature     float64
	TopP            float64
	ExecuteShell    bool
	CacheEntries    int
	ChatHistory     int
	Providers       []ProviderConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ProviderByID returns the configured overrides for a provider id, if any.
func (c *Config) ProviderByID(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

func (c *Config) applyEnvOverrides() {
	if provider := os.Getenv("SGPT_PROVIDER"); provider != "" {
		c.DefaultProvider = provider
	}
	if model := os.Getenv("SGPT_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("SGPT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if execute := os.Getenv("SGPT_DEFAULT_EXECUTE_SHELL_CMD"); execute != "" {
		c.ExecuteShell = execute == "true" || execute == "1"
	}
	if entries := os.Getenv("SGPT_CACHE_ENTRIES"); entries != "" {
		if n, err := strconv.Atoi(entries); err == nil && n > 0 {
			c.CacheEntries = n
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("SGPT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain prompts)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (SGPT_DEBUG=%s) ===", os.Getenv("SGPT_DEBUG"))
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:   "~/.local/share/sgpt",
		DefaultProvider: "openai",
		DefaultModel:    "gpt-4o-mini",
		Temperature:     0.1,
		TopP:            1.0,
		CacheEntries:    100,
		ChatHistory:     100,
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	dataDir := cfg.DataDir()
	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.DefaultProvider = userCfg.DefaultProvider
	cfg.DefaultModel = userCfg.DefaultModel
	cfg.Temperature = userCfg.Temperature
	cfg.TopP = userCfg.TopP
	cfg.ExecuteShell = userCfg.ExecuteShell
	cfg.CacheEntries = userCfg.CacheEntries
	cfg.ChatHistory = userCfg.ChatHistory
	cfg.Providers = userCfg.Providers

	cfg.applyEnvOverrides()

	if cfg.CacheEntries <= 0 {
		cfg.CacheEntries = 100
	}
	if cfg.ChatHistory <= 0 {
		cfg.ChatHistory = 100
	}

	dataDir = cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}
