// Package cache holds read-through caches for finalized assessments.
// Assessments are immutable, so entries never need invalidation; the TTL
// only bounds memory.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "assessment:"

// AssessmentCache stores canonical assessment JSON by assessment ID
type AssessmentCache interface {
	// Get returns the cached payload, or nil on a miss
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, payload []byte) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache implements AssessmentCache on Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	slog.Info("assessment cache connected", "address", cfg.Address, "db", cfg.DB, "ttl", ttl)

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached payload for an assessment
func (c *RedisCache) Get(ctx context.Context, id string) ([]byte, error) {
	payload, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached assessment: %w", err)
	}
	return payload, nil
}

// Set caches the payload of an assessment
func (c *RedisCache) Set(ctx context.Context, id string, payload []byte) error {
	if err := c.client.Set(ctx, keyPrefix+id, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache assessment: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is the cache used when Redis is not configured: every read misses
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (Nop) Set(context.Context, string, []byte) error { return nil }
func (Nop) HealthCheck(context.Context) error { return nil }
func (Nop) Close() error { return nil }
