package config

import "time"

// DefaultPath is the config file read from the working directory.
const DefaultPath = ".onepage.yml"

// Config is the top-level onepage configuration, corresponding to .onepage.yml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Assistant  AssistantConfig  `yaml:"assistant" koanf:"assistant"`
	LLM        LLMConfig        `yaml:"llm" koanf:"llm"`
	Storage    StorageConfig    `yaml:"storage" koanf:"storage"`
	Auth       AuthConfig       `yaml:"auth" koanf:"auth"`
	Compositor CompositorConfig `yaml:"compositor" koanf:"compositor"`
	Templates  TemplatesConfig  `yaml:"templates" koanf:"templates"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// ServerConfig configures `onepage serve`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// AssistantConfig points the editor at a copywriting endpoint. The endpoint
// is only called when APIKey is set too; against an onepage server without
// llm.endpoint_key any non-empty key works.
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint" koanf:"endpoint"`
	APIKey   string        `yaml:"api_key,omitempty" koanf:"api_key"`
	Timeout  time.Duration `yaml:"timeout" koanf:"timeout"`
	RPM      int           `yaml:"rpm" koanf:"rpm"`
	// Latency is the pause before an offline reply.
	Latency time.Duration `yaml:"latency" koanf:"latency"`
}

// LLMConfig is the completion backend behind the copywriting endpoint that
// `onepage serve` exposes. An empty provider serves mock replies.
type LLMConfig struct {
	Provider string `yaml:"provider" koanf:"provider"`
	Model    string `yaml:"model" koanf:"model"`
	BaseURL  string `yaml:"base_url,omitempty" koanf:"base_url"`
	APIKey   string `yaml:"api_key,omitempty" koanf:"api_key"`
	RPM      int    `yaml:"rpm" koanf:"rpm"`
	// EndpointKey is the bearer token callers of the endpoint must send.
	EndpointKey string `yaml:"endpoint_key,omitempty" koanf:"endpoint_key"`
}

// StorageConfig selects where saved projects go. An empty driver leaves
// saving unconfigured.
type StorageConfig struct {
	Driver string `yaml:"driver" koanf:"driver"`
	Path   string `yaml:"path,omitempty" koanf:"path"`
	DSN    string `yaml:"dsn,omitempty" koanf:"dsn"`
}

// CodeConfig is an extra access code.
type CodeConfig struct {
	ID   int    `yaml:"id" koanf:"id"`
	Role string `yaml:"role" koanf:"role"`
}

// AuthConfig selects the access code store.
type AuthConfig struct {
	Store         string                `yaml:"store" koanf:"store"`
	Path          string                `yaml:"path,omitempty" koanf:"path"`
	RedisAddr     string                `yaml:"redis_addr,omitempty" koanf:"redis_addr"`
	RedisPassword string                `yaml:"redis_password,omitempty" koanf:"redis_password"`
	RedisDB       int                   `yaml:"redis_db,omitempty" koanf:"redis_db"`
	RedisKey      string                `yaml:"redis_key,omitempty" koanf:"redis_key"`
	Codes         map[string]CodeConfig `yaml:"codes,omitempty" koanf:"codes"`
}

// CompositorConfig tunes image composition.
type CompositorConfig struct {
	Scale      float64       `yaml:"scale" koanf:"scale"`
	Settle     time.Duration `yaml:"settle" koanf:"settle"`
	OutputDir  string        `yaml:"output_dir" koanf:"output_dir"`
	AllowFiles bool          `yaml:"allow_files" koanf:"allow_files"`
}

// TemplatesConfig adds templates from a directory of YAML files.
type TemplatesConfig struct {
	Dir string `yaml:"dir,omitempty" koanf:"dir"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Assistant: AssistantConfig{
			Timeout: 30 * time.Second,
			Latency: time.Second,
		},
		Storage: StorageConfig{Path: ".onepage/onepage.db"},
		Auth:    AuthConfig{Store: "file"},
		Compositor: CompositorConfig{
			Scale:     2,
			Settle:    100 * time.Millisecond,
			OutputDir: ".",
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}
