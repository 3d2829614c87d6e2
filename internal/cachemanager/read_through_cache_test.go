package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager struct {
	mock.Mock
}

func (m *mockCacheManager) Get(ctx context.Context, key string) (int, bool) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Bool(1)
}

func (m *mockCacheManager) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (int, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Int(0), args.Bool(1)
}

func (m *mockCacheManager) Set(ctx context.Context, key string, value int, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCacheManager) Len() int {
	return m.Called().Int(0)
}

// countingFn returns the length of its input and counts calls.
func countingFn(calls *int) func(context.Context, string) (int, error) {
	return func(_ context.Context, in string) (int, error) {
		*calls++
		if in == "" {
			return 0, errors.New("empty input")
		}
		return len(in), nil
	}
}

func TestReadThroughCache_Bypass(t *testing.T) {
	m := &mockCacheManager{}
	calls := 0
	r := NewReadThroughCache[string, int, string](m, countingFn(&calls), true)

	v, err := r.Get(context.Background(), "k", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, v)

	v, err = r.GetWithRefresh(context.Background(), "k", "abcd", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 4, v)
	require.Equal(t, 2, calls)

	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	ctx := context.Background()
	m := &mockCacheManager{}
	m.On("Get", ctx, "k").Return(7, true).Once()
	calls := 0
	r := NewReadThroughCache[string, int, string](m, countingFn(&calls), false)

	v, err := r.Get(ctx, "k", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	ctx := context.Background()
	m := &mockCacheManager{}
	m.On("GetWithRefresh", ctx, "k", time.Minute).Return(0, false).Once()
	m.On("Set", ctx, "k", 3, time.Minute).Return().Once()
	calls := 0
	r := NewReadThroughCache[string, int, string](m, countingFn(&calls), false)

	v, err := r.GetWithRefresh(ctx, "k", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("lengths", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	r := NewReadThroughCache[string, int, string](cache, countingFn(&calls), false)

	_, err := r.Get(ctx, "empty", "", time.Minute)
	require.Error(t, err)
	require.Zero(t, cache.Len())

	v, err := r.Get(ctx, "three", "abc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	v, err = r.Get(ctx, "three", "ignored", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 3, v)
	require.Equal(t, 2, calls)

	require.NoError(t, r.Invalidate(ctx))
	require.Zero(t, cache.Len())
}
