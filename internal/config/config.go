// Package config loads .onepage.yml with ONEPAGE_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// nesting levels: ONEPAGE_ASSISTANT__API_KEY sets assistant.api_key.
const EnvPrefix = "ONEPAGE_"

// LoadDotEnv loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ONEPAGE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var (
	validLLMProviders = map[string]bool{"": true, "openai": true, "deepseek": true, "openrouter": true, "anthropic": true, "ollama": true}
	validDrivers      = map[string]bool{"": true, "sqlite": true, "postgres": true}
	validCodeStores   = map[string]bool{"": true, "none": true, "file": true, "redis": true}
	validLogLevels    = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats   = map[string]bool{"": true, "console": true, "json": true}
	validRoles        = map[string]bool{"": true, "user": true, "admin": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	if c.Assistant.RPM < 0 || c.LLM.RPM < 0 {
		return fmt.Errorf("rpm must be non-negative")
	}
	if c.Assistant.Timeout < 0 {
		return fmt.Errorf("assistant.timeout must be non-negative")
	}

	if !validLLMProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of openai, deepseek, openrouter, anthropic, ollama", c.LLM.Provider)
	}
	if c.LLM.Provider != "" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm.provider is set")
	}

	if !validDrivers[c.Storage.Driver] {
		return fmt.Errorf("invalid storage.driver %q: must be sqlite or postgres", c.Storage.Driver)
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for sqlite")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for postgres")
	}

	if !validCodeStores[c.Auth.Store] {
		return fmt.Errorf("invalid auth.store %q: must be none, file or redis", c.Auth.Store)
	}
	if c.Auth.Store == "redis" && c.Auth.RedisAddr == "" {
		return fmt.Errorf("auth.redis_addr is required for the redis store")
	}
	for code, cc := range c.Auth.Codes {
		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("auth.codes contains an empty code")
		}
		if !validRoles[cc.Role] {
			return fmt.Errorf("invalid role %q for code %q", cc.Role, code)
		}
	}

	if c.Compositor.Scale <= 0 || c.Compositor.Scale > 4 {
		return fmt.Errorf("compositor.scale must be in (0, 4]")
	}

	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given LLM provider.
func APIKeyEnvVar(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
