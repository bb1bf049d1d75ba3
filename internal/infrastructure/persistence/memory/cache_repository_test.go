package memory

import (
	"context"
	"testing"
	"time"

	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheRepository()
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "analysis:1", []byte("payload"), time.Minute))

	value, err := cache.Get(ctx, "analysis:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)

	exists, err := cache.Exists(ctx, "analysis:1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCacheRepository_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheRepository()
	defer cache.Close()

	_, err := cache.Get(ctx, "absent")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Second))

	now = now.Add(2 * time.Second)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	cache.evictExpired()
	assert.Empty(t, cache.data)
}

func TestCacheRepository_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheRepository()
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}
