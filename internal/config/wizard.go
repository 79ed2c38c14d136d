package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// defaultModels suggests a model per LLM provider.
var defaultModels = map[string]string{
	"openai":     "gpt-4o-mini",
	"deepseek":   "deepseek-chat",
	"openrouter": "deepseek/deepseek-chat",
	"anthropic":  "claude-3-5-haiku-latest",
	"ollama":     "llama3",
}

func validatePort(s string) error {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("enter a port between 1 and 65535")
	}
	return nil
}

// RunWizard runs an interactive configuration wizard starting from base and
// saves the result to path.
func RunWizard(path string, base *Config) (*Config, error) {
	fmt.Println("Welcome to onepage! Let's configure your editor.")
	fmt.Println()

	cfg := DefaultConfig()
	if base != nil {
		c := *base
		cfg = &c
	}

	// 1. Copywriting endpoint used by the assistant.
	endpointPrompt := promptui.Prompt{
		Label:   "Copywriting endpoint URL (leave blank for the offline copywriter)",
		Default: cfg.Assistant.Endpoint,
	}
	endpoint, err := endpointPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("endpoint: %w", err)
	}
	cfg.Assistant.Endpoint = endpoint

	// 2. LLM provider backing `onepage serve`.
	providerPrompt := promptui.Select{
		Label: "LLM provider for the copywriting endpoint",
		Items: []string{"none (mock replies)", "openai", "deepseek", "openrouter", "anthropic", "ollama"},
	}
	idx, provider, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	if idx == 0 {
		provider = ""
	}
	cfg.LLM.Provider = provider
	if provider != "" {
		modelPrompt := promptui.Prompt{
			Label:   "Model",
			Default: defaultModels[provider],
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		cfg.LLM.Model = model
	}

	// 3. Project storage.
	storagePrompt := promptui.Select{
		Label: "Where should saved projects go",
		Items: []string{"nowhere (demo mode)", "sqlite", "postgres"},
	}
	idx, driver, err := storagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage selection: %w", err)
	}
	if idx == 0 {
		driver = ""
	}
	cfg.Storage.Driver = driver
	switch driver {
	case "sqlite":
		p := promptui.Prompt{Label: "Database file", Default: cfg.Storage.Path}
		if cfg.Storage.Path, err = p.Run(); err != nil {
			return nil, fmt.Errorf("database file: %w", err)
		}
	case "postgres":
		p := promptui.Prompt{Label: "Postgres DSN", Mask: '*'}
		if cfg.Storage.DSN, err = p.Run(); err != nil {
			return nil, fmt.Errorf("postgres dsn: %w", err)
		}
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:    "Port for onepage serve",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.LLM.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running onepage serve.\n", envVar)
	}
	if cfg.Assistant.Endpoint != "" && cfg.Assistant.APIKey == "" {
		fmt.Printf("Note: Set %sASSISTANT__API_KEY to authenticate with the endpoint.\n", EnvPrefix)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
