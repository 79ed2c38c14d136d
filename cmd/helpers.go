package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/assistant"
	"github.com/ziadkadry99/onepage/internal/auth"
	"github.com/ziadkadry99/onepage/internal/catalog"
	"github.com/ziadkadry99/onepage/internal/compositor"
	"github.com/ziadkadry99/onepage/internal/config"
	"github.com/ziadkadry99/onepage/internal/db"
	"github.com/ziadkadry99/onepage/internal/llm"
	"github.com/ziadkadry99/onepage/internal/logging"
	"github.com/ziadkadry99/onepage/internal/projects"
	"github.com/ziadkadry99/onepage/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `onepage init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. It writes to stderr so that stdout
// stays free for command output and the MCP protocol.
func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Format)
}

func newCatalog(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.New(cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	return store, nil
}

func newSessionManager(cfg *config.Config, store *catalog.Store, logger *zap.Logger) *session.Manager {
	return session.NewManager(store, newSessionOptions(cfg, logger))
}

func newSessionOptions(cfg *config.Config, logger *zap.Logger) session.Options {
	return session.Options{
		Assistant: assistant.NewBridge(assistant.Config{
			Endpoint: cfg.Assistant.Endpoint,
			APIKey:   cfg.Assistant.APIKey,
			Timeout:  cfg.Assistant.Timeout,
			RPM:      cfg.Assistant.RPM,
		}, logger),
		Latency: cfg.Assistant.Latency,
		Logger:  logger,
	}
}

func newComposer(cfg *config.Config, logger *zap.Logger) *compositor.Composer {
	return compositor.New(compositor.Options{
		Loader: &compositor.Loader{AllowFiles: cfg.Compositor.AllowFiles},
		Settle: cfg.Compositor.Settle,
		Scale:  cfg.Compositor.Scale,
	}, logger)
}

// newCopywriter builds the handler behind POST /api/generate-marketing-copy.
func newCopywriter(cfg *config.Config, logger *zap.Logger) (*assistant.CopywriterHandler, error) {
	provider, err := llm.NewProvider(llm.Options{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		RPM:      cfg.LLM.RPM,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return assistant.NewCopywriterHandler(provider, cfg.LLM.EndpointKey, logger), nil
}

// openProjects opens the configured project store. The returned close
// function is never nil.
func openProjects(ctx context.Context, cfg *config.Config, logger *zap.Logger) (projects.Store, func(), error) {
	var (
		database *db.DB
		err      error
	)
	switch cfg.Storage.Driver {
	case "":
		return projects.Unconfigured{}, func() {}, nil
	case "sqlite":
		database, err = db.Open(cfg.Storage.Path)
	case "postgres":
		database, err = db.OpenPostgres(ctx, cfg.Storage.DSN)
	default:
		err = fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening project storage: %w", err)
	}
	return projects.NewSQLStore(database, logger), func() { database.Close() }, nil
}

func newDirectory(cfg *config.Config) *auth.Directory {
	extra := make(map[string]auth.User, len(cfg.Auth.Codes))
	for code, c := range cfg.Auth.Codes {
		extra[code] = auth.User{ID: c.ID, Role: auth.Role(c.Role)}
	}
	return auth.NewDirectory(extra)
}

// newCodeStore returns the configured code store. With store "none" it is
// nil and sign-ins last for the process only.
func newCodeStore(cfg *config.Config) (auth.CodeStore, error) {
	switch cfg.Auth.Store {
	case "none":
		return nil, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Auth.RedisAddr,
			Password: cfg.Auth.RedisPassword,
			DB:       cfg.Auth.RedisDB,
		})
		return auth.NewRedisStore(client, cfg.Auth.RedisKey), nil
	default:
		path := cfg.Auth.Path
		if path == "" {
			var err error
			if path, err = auth.DefaultPath(); err != nil {
				return nil, err
			}
		}
		return &auth.FileStore{Path: path}, nil
	}
}

// signInContext restores the CLI sign-in state.
func signInContext(ctx context.Context, cfg *config.Config) (*auth.SessionContext, error) {
	store, err := newCodeStore(cfg)
	if err != nil {
		return nil, err
	}
	return auth.NewSessionContext(ctx, newDirectory(cfg), store)
}

// outputPath resolves name inside the configured output directory unless it
// is already a path.
func outputPath(cfg *config.Config, name string) string {
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	dir := cfg.Compositor.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return name
	}
	return filepath.Join(dir, name)
}
