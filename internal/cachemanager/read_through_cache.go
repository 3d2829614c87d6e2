package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache answers from cache and calls fn on a miss, storing what
// it returns. Errors are not cached.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache  CacheManager[K, V]
	fn     func(ctx context.Context, input I) (V, error)
	bypass bool
}

// NewReadThroughCache wraps cache. With bypass set every call goes to fn.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	bypass bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, fn: fn, bypass: bypass}
}

// Get returns the value for key, computing it from input on a miss.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, r.cache.Get)
}

// GetWithRefresh is Get, extending the entry's ttl on a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, func(ctx context.Context, key K) (V, bool) {
		return r.cache.GetWithRefresh(ctx, key, ttl)
	})
}

func (r *ReadThroughCache[K, V, I]) get(
	ctx context.Context,
	key K,
	input I,
	ttl time.Duration,
	lookup func(context.Context, K) (V, bool),
) (V, error) {
	if r.bypass {
		return r.fn(ctx, input)
	}
	if v, ok := lookup(ctx, key); ok {
		return v, nil
	}
	v, err := r.fn(ctx, input)
	if err != nil {
		return v, err
	}
	r.cache.Set(ctx, key, v, ttl)
	return v, nil
}

// Invalidate drops every cached value.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) error {
	return r.cache.Flush(ctx)
}
