// Package config provides configuration loading for polychat.
//
// Settings come from a TOML file with environment variable overrides and
// built-in defaults, in increasing order of precedence: defaults, file,
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Backend names accepted by StorageConfig.Backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config represents the complete polychat configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Providers ProvidersConfig `toml:"providers"`
}

// ServerConfig holds the HTTP listener and chat rate-limit settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ChatRPS and ChatBurst shape the token bucket guarding POST /chat.
	// ChatRPS <= 0 disables rate limiting.
	ChatRPS   float64 `toml:"chat_rps"`
	ChatBurst int     `toml:"chat_burst"`
}

// StorageConfig selects the conversation store backend.
type StorageConfig struct {
	Backend string `toml:"backend"` // "memory" or "sqlite"
	Path    string `toml:"path"`    // database file for the sqlite backend
}

// ProvidersConfig holds the system-default credentials per provider. Explicit
// per-request keys always take priority over these.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `toml:"openai"`
	Anthropic ProviderConfig `toml:"anthropic"`
	Gemini    ProviderConfig `toml:"gemini"`
}

// ProviderConfig is one provider's default credential material.
type ProviderConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:      8080,
			ChatRPS:   5,
			ChatBurst: 10,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Path:    "polychat.db",
		},
	}
}

// Load reads the configuration file at path (skipped when path is empty or
// the file does not exist), applies environment overrides, and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the file values.
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "POLYCHAT_HOST")
	setInt(&cfg.Server.Port, "POLYCHAT_PORT")
	setString(&cfg.Storage.Backend, "POLYCHAT_STORAGE_BACKEND")
	setString(&cfg.Storage.Path, "POLYCHAT_DB_PATH")

	setString(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Providers.OpenAI.BaseURL, "OPENAI_API_BASE_URL")
	setString(&cfg.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Providers.Anthropic.BaseURL, "ANTHROPIC_API_BASE_URL")
	setString(&cfg.Providers.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Providers.Gemini.BaseURL, "GEMINI_API_BASE_URL")
}

func setString(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func (cfg Config) validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	switch cfg.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == BackendSQLite && cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required for the sqlite backend")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (cfg ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
