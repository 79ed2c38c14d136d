package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Compositor.Scale != 2 {
		t.Errorf("expected default scale 2, got %v", cfg.Compositor.Scale)
	}
	if cfg.Assistant.Latency != time.Second {
		t.Errorf("expected default latency 1s, got %v", cfg.Assistant.Latency)
	}
	if cfg.Storage.Driver != "" {
		t.Errorf("storage should be unconfigured by default, got %q", cfg.Storage.Driver)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.onepage.yml")

	original := DefaultConfig()
	original.Server.Port = 9090
	original.Assistant.Endpoint = "https://copy.example.com/api"
	original.Assistant.Timeout = 5 * time.Second
	original.Storage.Driver = "sqlite"
	original.Auth.Codes = map[string]CodeConfig{"partner": {ID: 7, Role: "admin"}}
	original.Compositor.Scale = 3

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Port != 9090 {
		t.Errorf("port: got %d, want 9090", loaded.Server.Port)
	}
	if loaded.Assistant.Endpoint != original.Assistant.Endpoint {
		t.Errorf("endpoint: got %q, want %q", loaded.Assistant.Endpoint, original.Assistant.Endpoint)
	}
	if loaded.Assistant.Timeout != 5*time.Second {
		t.Errorf("timeout: got %v, want 5s", loaded.Assistant.Timeout)
	}
	if loaded.Compositor.Settle != 100*time.Millisecond {
		t.Errorf("settle: got %v, want 100ms", loaded.Compositor.Settle)
	}
	if loaded.Storage.Driver != "sqlite" {
		t.Errorf("driver: got %q, want sqlite", loaded.Storage.Driver)
	}
	if got := loaded.Auth.Codes["partner"]; got.ID != 7 || got.Role != "admin" {
		t.Errorf("codes: got %+v", got)
	}
	if loaded.Compositor.Scale != 3 {
		t.Errorf("scale: got %v, want 3", loaded.Compositor.Scale)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("ONEPAGE_ASSISTANT__API_KEY", "sk-env")
	t.Setenv("ONEPAGE_LOG__LEVEL", "debug")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Assistant.APIKey != "sk-env" {
		t.Errorf("env override failed: got %q, want %q", loaded.Assistant.APIKey, "sk-env")
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("env override failed: got %q, want debug", loaded.Log.Level)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"ONEPAGE_ASSISTANT__API_KEY": "assistant.api_key",
		"ONEPAGE_SERVER__PORT":       "server.port",
		"ONEPAGE_LOG__FORMAT":        "log.format",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ONEPAGE_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ONEPAGE_TEST_DOTENV", "")
	os.Unsetenv("ONEPAGE_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("ONEPAGE_TEST_DOTENV"); got != "from-file" {
		t.Errorf("got %q, want from-file", got)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"llm provider", func(c *Config) { c.LLM.Provider = "google" }},
		{"llm model", func(c *Config) { c.LLM.Provider = "openai" }},
		{"driver", func(c *Config) { c.Storage.Driver = "mysql" }},
		{"postgres dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"sqlite path", func(c *Config) { c.Storage.Driver = "sqlite"; c.Storage.Path = "" }},
		{"code store", func(c *Config) { c.Auth.Store = "vault" }},
		{"redis addr", func(c *Config) { c.Auth.Store = "redis" }},
		{"role", func(c *Config) { c.Auth.Codes = map[string]CodeConfig{"x": {Role: "root"}} }},
		{"scale", func(c *Config) { c.Compositor.Scale = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"rpm", func(c *Config) { c.Assistant.RPM = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"deepseek", "DEEPSEEK_API_KEY"},
		{"ollama", ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidatePort(t *testing.T) {
	if validatePort("8080") != nil {
		t.Error("8080 should be valid")
	}
	for _, s := range []string{"", "abc", "0", "70000"} {
		if validatePort(s) == nil {
			t.Errorf("%q should be invalid", s)
		}
	}
}
