// Package cache memoises classifier outcomes keyed by model version and
// feature vector hash.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamwise/churn/internal/domain/port"
)

const keyPrefix = "churn:outcome:"

// RedisCache implements port.PredictionCache on Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ port.PredictionCache = (*RedisCache)(nil)

// Options configures NewRedisCache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache connects to Redis and pings it once.
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	c := NewRedisCacheFromClient(client, opts.TTL)
	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*port.CachedOutcome, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}

	var out port.CachedOutcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return &out, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, outcome port.CachedOutcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoopCache never hits.
type NoopCache struct{}

var _ port.PredictionCache = NoopCache{}

func (NoopCache) Get(context.Context, string) (*port.CachedOutcome, error) { return nil, nil }
func (NoopCache) Set(context.Context, string, port.CachedOutcome) error    { return nil }
func (NoopCache) Ping(context.Context) error                               { return nil }
