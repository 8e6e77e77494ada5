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

func (m *mockCacheManager) Get(ctx context.Context, key string) (string, bool) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1)
}

func (m *mockCacheManager) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func counting(calls *int, err error) func(context.Context, int) (string, error) {
	return func(_ context.Context, n int) (string, error) {
		*calls++
		if err != nil {
			return "", err
		}
		return "Found " + string(rune('0'+n)) + " backends", nil
	}
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	m := &mockCacheManager{}
	calls := 0
	r := NewReadThroughCache[string, string, int](m, counting(&calls, nil), true)

	got, err := r.Get(context.Background(), "report", 2, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Found 2 backends", got)

	got, err = r.Get(context.Background(), "report", 3, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Found 3 backends", got)

	require.NoError(t, r.Invalidate(context.Background(), "report"))
	require.Equal(t, 2, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	m := &mockCacheManager{}
	m.On("Get", mock.Anything, "report").Return("cached", true).Once()
	calls := 0
	r := NewReadThroughCache[string, string, int](m, counting(&calls, nil), false)

	got, err := r.Get(context.Background(), "report", 2, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStores(t *testing.T) {
	m := &mockCacheManager{}
	m.On("Get", mock.Anything, "report").Return("", false).Once()
	m.On("Set", mock.Anything, "report", "Found 4 backends", time.Minute).Once()
	calls := 0
	r := NewReadThroughCache[string, string, int](m, counting(&calls, nil), false)

	got, err := r.Get(context.Background(), "report", 4, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Found 4 backends", got)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	m := &mockCacheManager{}
	m.On("Get", mock.Anything, "report").Return("", false)
	boom := errors.New("render failed")
	calls := 0
	r := NewReadThroughCache[string, string, int](m, counting(&calls, boom), false)

	_, err := r.Get(context.Background(), "report", 1, time.Minute)
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_WithInMemory(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("report", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	r := NewReadThroughCache[string, string, int](cache, counting(&calls, nil), false)
	ctx := context.Background()

	first, err := r.Get(ctx, "report", 1, time.Minute)
	require.NoError(t, err)
	second, err := r.Get(ctx, "report", 5, time.Minute)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, calls)

	require.NoError(t, r.Invalidate(ctx, "report"))
	third, err := r.Get(ctx, "report", 5, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Found 5 backends", third)
	require.Equal(t, 2, calls)
}
