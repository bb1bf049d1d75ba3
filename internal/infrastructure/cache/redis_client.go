// Package cache provides the Redis client and the Redis-backed cache
// repository used for progress analyses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nutriplan/core/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrKeyNotFound is returned when a key is absent
	ErrKeyNotFound = errors.New("cache key not found")
	// ErrCircuitOpen is returned while the circuit breaker rejects calls
	ErrCircuitOpen = errors.New("redis circuit breaker is open")
)

// RedisClient provides Redis connection management with cluster support
type RedisClient struct {
	client         redis.UniversalClient
	logger         *zap.Logger
	circuitBreaker *CircuitBreaker
}

// NewRedisClient creates a Redis client and checks the connection
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	// Create Redis options
	opts := &redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxIdleConns: cfg.MaxIdleConns,

		// Connection timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		// Connection lifecycle
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: time.Minute * 5,
	}

	// Configure cluster mode if enabled
	if cfg.EnableCluster && len(cfg.ClusterNodes) > 0 {
		opts.Addrs = cfg.ClusterNodes
		logger.Info("Redis cluster mode enabled", zap.Strings("nodes", cfg.ClusterNodes))
	}

	client := NewRedisClientFrom(redis.NewUniversalClient(opts), logger)

	// Test initial connection
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized successfully",
		zap.String("addr", cfg.Addr()),
		zap.Int("database", cfg.Database),
		zap.Bool("cluster_enabled", cfg.EnableCluster))

	return client, nil
}

// NewRedisClientFrom wraps an existing go-redis client
func NewRedisClientFrom(client redis.UniversalClient, logger *zap.Logger) *RedisClient {
	return &RedisClient{
		client:         client,
		logger:         logger.Named("redis"),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// Ping tests Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.do(func() error {
		return r.client.Ping(ctx).Err()
	})
}

// Get retrieves a value from Redis with circuit breaker protection
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := r.do(func() error {
		var err error
		result, err = r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrKeyNotFound
		}
		return err
	})
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		r.logger.Error("Redis GET failed", zap.String("key", key), zap.Error(err))
	}
	return result, err
}

// Set stores a value in Redis with TTL
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.do(func() error {
		return r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		r.logger.Error("Redis SET failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Delete removes keys from Redis
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	err := r.do(func() error {
		return r.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		r.logger.Error("Redis DEL failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return err
}

// Exists counts how many of the keys exist
func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := r.do(func() error {
		var err error
		n, err = r.client.Exists(ctx, keys...).Result()
		return err
	})
	return n, err
}

// Publish sends a message on a pub/sub channel
func (r *RedisClient) Publish(ctx context.Context, channel string, payload []byte) error {
	err := r.do(func() error {
		return r.client.Publish(ctx, channel, payload).Err()
	})
	if err != nil {
		r.logger.Error("Redis PUBLISH failed", zap.String("channel", channel), zap.Error(err))
	}
	return err
}

// Subscribe opens a pub/sub subscription
func (r *RedisClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return r.client.Subscribe(ctx, channels...)
}

// Close closes the underlying client
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// do runs op behind the circuit breaker. Misses count as successes.
func (r *RedisClient) do(op func() error) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}

	err := op()
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		r.circuitBreaker.RecordFailure()
		return err
	}

	r.circuitBreaker.RecordSuccess()
	return err
}

// CircuitState represents circuit breaker states
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker opens after maxFailures consecutive failures and lets a
// probe through once timeout has elapsed.
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		state:       CircuitClosed,
		now:         time.Now,
	}
}

// AllowRequest reports whether a call may proceed
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) >= cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the circuit
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure and opens the circuit at the threshold
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
