package cache

import (
	"context"
	"errors"
	"time"

	"github.com/nutriplan/core/internal/ports/outbound"
	"go.uber.org/zap"
)

// RedisCacheRepository implements the cache repository on Redis. Keys are
// namespaced with a prefix.
type RedisCacheRepository struct {
	client *RedisClient
	prefix string
	logger *zap.Logger
}

// NewRedisCacheRepository creates a new Redis cache repository
func NewRedisCacheRepository(client *RedisClient, prefix string, logger *zap.Logger) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
		prefix: prefix,
		logger: logger.Named("cache"),
	}
}

var _ outbound.CacheRepository = (*RedisCacheRepository)(nil)

// Get retrieves a value; absent keys yield outbound.ErrCacheMiss
func (r *RedisCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Set stores a value with TTL
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl)
}

// Delete removes a value
func (r *RedisCacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Delete(ctx, r.key(key))
}

// Exists checks whether the key exists
func (r *RedisCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key))
	if err != nil {
		r.logger.Error("Cache exists check failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

func (r *RedisCacheRepository) key(k string) string {
	return r.prefix + k
}
