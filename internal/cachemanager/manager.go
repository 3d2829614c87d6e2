// Package cachemanager provides typed caches over patrickmn/go-cache and a
// read-through wrapper that fills them on miss.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry expiry.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
