package llm

import (
	"fmt"
	"os"
)

// Options selects and configures a provider.
type Options struct {
	Provider string // "openai", "deepseek", "openrouter", "anthropic", "ollama"
	Model    string
	BaseURL  string
	APIKey   string // falls back to the provider's conventional env var
	RPM      int    // requests per minute; 0 disables limiting
}

var envKeys = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"deepseek":   "DEEPSEEK_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
}

var defaultBaseURLs = map[string]string{
	"deepseek":   "https://api.deepseek.com/v1",
	"openrouter": "https://openrouter.ai/api/v1",
}

// NewProvider creates a provider from opts. An empty opts.Provider returns
// (nil, nil): no provider is configured.
func NewProvider(opts Options) (Provider, error) {
	if opts.Provider == "" {
		return nil, nil
	}

	apiKey := opts.APIKey
	if env, ok := envKeys[opts.Provider]; ok && apiKey == "" {
		apiKey = os.Getenv(env)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", env)
		}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURLs[opts.Provider]
	}

	var p Provider
	switch opts.Provider {
	case "openai", "deepseek", "openrouter":
		p = NewOpenAIProvider(opts.Provider, apiKey, opts.Model, baseURL)

	case "anthropic":
		p = NewAnthropicProvider(apiKey, opts.Model, baseURL)

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		p = NewOllamaProvider(host, opts.Model)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}

	return NewRateLimitedProvider(p, opts.RPM), nil
}
