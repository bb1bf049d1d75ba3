package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutriplan/core/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.AllowRequest())
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.AllowRequest())

	now = now.Add(time.Minute)
	assert.True(t, cb.AllowRequest())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(time.Minute)
	require.True(t, cb.AllowRequest())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestRedisClient_UnreachableServerTripsBreaker(t *testing.T) {
	// Nothing listens on port 1.
	raw := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       []string{"127.0.0.1:1"},
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	client := NewRedisClientFrom(raw, zap.NewNop())
	client.circuitBreaker = NewCircuitBreaker(1, time.Hour)
	defer client.Close()

	ctx := context.Background()
	err := client.Set(ctx, "k", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCircuitOpen))

	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCircuitOpen)

	repo := NewRedisCacheRepository(client, "test:", zap.NewNop())
	_, err = repo.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, errors.Is(err, outbound.ErrCacheMiss))
}
