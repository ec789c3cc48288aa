// Package cache stores JSON-encoded values with a TTL in Redis or in process
// memory. Sessions, carts and report caches sit on top of a Store.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/config"
)

type Store interface {
	// Get decodes the value under key into dest. It reports false on a miss
	// or when the stored value cannot be decoded.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Default is the process-wide store. It starts as an in-memory store so
// tests and single-node runs work without Redis.
var Default Store = NewMemoryStore()

// Connect selects the store named by CACHE_DRIVER. A failing Redis ping is
// returned to the caller and Default is left unchanged.
func Connect(ctx context.Context) error {
	if config.CacheDriver() != "redis" {
		Default = NewMemoryStore()
		return nil
	}

	store, err := NewRedisStore(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		return fmt.Errorf("cache: connect: %w", err)
	}
	Default = store
	return nil
}

func Get(ctx context.Context, key string, dest interface{}) bool {
	return Default.Get(ctx, key, dest)
}

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return Default.Set(ctx, key, value, ttl)
}

func Del(ctx context.Context, keys ...string) error {
	return Default.Del(ctx, keys...)
}

// Forget is an alias for Del.
func Forget(ctx context.Context, key string) error {
	return Del(ctx, key)
}
