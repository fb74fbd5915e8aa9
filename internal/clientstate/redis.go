package clientstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/greengrocer-web/pkg/redis"
)

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	StateKey(scope, key string) string
}

// RedisStore keeps client state under gg:state:<scope>:<key> with native expiry.
type RedisStore struct {
	backend redisBackend
}

// NewRedisStore builds a store backed by the shared Redis client.
func NewRedisStore(client *redisclient.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{backend: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, scope, key string) (string, error) {
	value, err := s.backend.Get(ctx, s.backend.StateKey(scope, key))
	if errors.Is(err, redisclient.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading client state %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, scope, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.backend.Set(ctx, s.backend.StateKey(scope, key), value, ttl); err != nil {
		return fmt.Errorf("writing client state %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, s.backend.StateKey(scope, key))
	}
	if err := s.backend.Del(ctx, full...); err != nil {
		return fmt.Errorf("deleting client state: %w", err)
	}
	return nil
}
