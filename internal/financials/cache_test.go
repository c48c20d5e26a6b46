package financials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	cache := NewMemoryCache[string, int](time.Hour, 0)
	defer cache.Close()

	_, ok := cache.Get("missing")
	require.False(t, ok)

	cache.Set("a", 1)
	got, ok := cache.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewMemoryCache[string, int](time.Minute, 0)
	defer cache.Close()
	cache.now = func() time.Time { return now }

	cache.Set("a", 1)
	cache.Set("b", 2)

	now = now.Add(30 * time.Second)
	cache.Set("b", 3)

	now = now.Add(45 * time.Second)
	_, ok := cache.Get("a")
	require.False(t, ok, "entry a should have expired")

	got, ok := cache.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, got)

	cache.evictExpired()
	require.Equal(t, 1, cache.Len())
}

func TestMemoryCacheCloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache[string, int](time.Minute, time.Millisecond)
	cache.Close()
	cache.Close()
}
