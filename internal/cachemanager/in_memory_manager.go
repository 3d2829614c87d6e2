package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/scopes/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// NoExpiration keeps an entry until it is deleted or the cache is flushed.
const NoExpiration = gocache.NoExpiration

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// InMemoryCacheManager is a CacheManager backed by go-cache. Keys are any
// string type.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// NewInMemoryCacheManager returns an empty cache. useCase labels log lines.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the cached value for key.
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type in cache entry", "cache", c.useCase, "key", string(key))
		return zero, false
	}
	return v, true
}

// GetWithRefresh is Get, and on a hit re-stores the value with a fresh ttl.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	v, ok := c.Get(ctx, key)
	if ok {
		c.Set(ctx, key, v, ttl)
	}
	return v, ok
}

// Set stores value under key.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes keys. Missing keys are ignored.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush(context.Context) error {
	log.Debug(log.CatCache, "flush", "cache", c.useCase, "entries", c.cache.ItemCount())
	c.cache.Flush()
	return nil
}

// Len returns the number of entries, including expired ones not yet
// cleaned up.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}
