package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/frozify/storefront/pkg/redis"
)

// RedisKV is the subset of the redis client the storage backend needs.
type RedisKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StorageKey(key string) string
}

// Redis stores values as plain strings with a sliding TTL refreshed on every write.
type Redis struct {
	client RedisKV
	ttl    time.Duration
}

func NewRedis(client RedisKV, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.client.StorageKey(key))
	if redis.IsNil(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.client.StorageKey(key), value, r.ttl); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.client.StorageKey(key)); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
