package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker hands out a lease per job so only one replica runs it at a time.
type Locker interface {
	Acquire(ctx context.Context, job string, ttl time.Duration) (Lease, bool, error)
}

// Lease is a held job lock.
type Lease interface {
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLocker stores each lease as "<prefix>:<job>" holding a random owner token.
type RedisLocker struct {
	client redisStore
	prefix string
}

func NewRedisLocker(client redisStore, prefix string) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for locker")
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return nil, errors.New("lock prefix is required")
	}
	return &RedisLocker{client: client, prefix: prefix}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, job string, ttl time.Duration) (Lease, bool, error) {
	key := l.prefix + ":" + job
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, key: key, owner: owner}, true, nil
}

type redisLease struct {
	client redisStore
	key    string
	owner  string
}

// Release deletes the key unless it expired and another replica took it over.
func (l *redisLease) Release(ctx context.Context) error {
	current, err := l.client.Get(ctx, l.key)
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", l.key, err)
	case current != l.owner:
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
