package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/redis/go-redis/v9"
)

// DefaultPath returns ~/.onepage/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".onepage", "session.json"), nil
}

type storedSession struct {
	Code string `json:"code,omitempty"`
}

// FileStore keeps the code in a JSON file that is replaced atomically.
type FileStore struct {
	Path string
}

func (f *FileStore) LoadCode(context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading session file: %w", err)
	}
	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing session file: %w", err)
	}
	return s.Code, nil
}

func (f *FileStore) SaveCode(_ context.Context, code string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(storedSession{Code: code}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}
	if err := atomic.WriteFile(f.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return os.Chmod(f.Path, 0o600)
}

func (f *FileStore) ClearCode(context.Context) error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// DefaultRedisKey is where RedisStore keeps the code.
const DefaultRedisKey = "onepage:auth:code"

// RedisStore keeps the code under a single Redis key with no expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore uses key, or DefaultRedisKey when key is empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) LoadCode(ctx context.Context) (string, error) {
	code, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", r.key, err)
	}
	return code, nil
}

func (r *RedisStore) SaveCode(ctx context.Context, code string) error {
	if err := r.client.Set(ctx, r.key, code, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) ClearCode(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", r.key, err)
	}
	return nil
}
