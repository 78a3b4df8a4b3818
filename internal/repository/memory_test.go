package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	t.Run("SetGetExpire", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
		got, ok, err := cache.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("1"), got)

		clock = clock.Add(2 * time.Minute)
		_, ok, err = cache.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "b", []byte("2"), 0))
		require.NoError(t, cache.Delete(ctx, "b"))
		_, ok, _ := cache.Get(ctx, "b")
		assert.False(t, ok)
	})

	t.Run("RateLimitWindow", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := cache.CheckRateLimit(ctx, "u1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, _ := cache.CheckRateLimit(ctx, "u1", 3, time.Minute)
		assert.False(t, allowed)

		allowed, _ = cache.CheckRateLimit(ctx, "u2", 3, time.Minute)
		assert.True(t, allowed, "keys are independent")

		clock = clock.Add(61 * time.Second)
		allowed, _ = cache.CheckRateLimit(ctx, "u1", 3, time.Minute)
		assert.True(t, allowed)
	})
}

func TestMemoryCache_ConcurrentRateLimit(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := cache.CheckRateLimit(ctx, "burst", 20, time.Minute)
			if ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, allowedCount)
}
