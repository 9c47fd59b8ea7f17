package cbr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateUnavailable means no key rate has been fetched yet or it expired
var ErrRateUnavailable = errors.New("key rate unavailable")

const keyRateCacheKey = "credit:cbr:key_rate"

// RateCache stores the latest key rate
type RateCache interface {
	Get(ctx context.Context) (float64, error)
	Set(ctx context.Context, rate float64, ttl time.Duration) error
}

// MemoryCache keeps the rate in process memory
type MemoryCache struct {
	mu      sync.RWMutex
	rate    float64
	expires time.Time
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

// Get returns the cached rate if it has not expired
func (m *MemoryCache) Get(_ context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.expires.IsZero() || !m.now().Before(m.expires) {
		return 0, ErrRateUnavailable
	}
	return m.rate, nil
}

// Set stores the rate for ttl
func (m *MemoryCache) Set(_ context.Context, rate float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
	m.expires = m.now().Add(ttl)
	return nil
}

// RedisCache shares the rate between service instances
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient builds a client with the timeouts used across the service
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// Get reads the rate from redis
func (r *RedisCache) Get(ctx context.Context) (float64, error) {
	val, err := r.client.Get(ctx, keyRateCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrRateUnavailable
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read key rate from redis: %w", err)
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cached key rate %q: %w", val, err)
	}
	return rate, nil
}

// Set writes the rate to redis with expiration
func (r *RedisCache) Set(ctx context.Context, rate float64, ttl time.Duration) error {
	val := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := r.client.Set(ctx, keyRateCacheKey, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write key rate to redis: %w", err)
	}
	return nil
}
