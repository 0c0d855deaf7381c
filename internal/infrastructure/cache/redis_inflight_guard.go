package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultInFlightKeyPrefix = "affiliate:inflight:"

// RedisInFlightGuard implements InFlightGuard using Redis
// This is suitable for distributed deployments where multiple gateway
// instances must reject the same duplicate submission
type RedisInFlightGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisInFlightGuard creates a guard on an existing Redis client
func NewRedisInFlightGuard(client *redis.Client, keyPrefix string) *RedisInFlightGuard {
	if keyPrefix == "" {
		keyPrefix = defaultInFlightKeyPrefix
	}
	return &RedisInFlightGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lock for key with a TTL
// Uses SETNX (SET if Not eXists) for atomic operation
func (g *RedisInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire in-flight lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock for key
func (g *RedisInFlightGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight lock: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (g *RedisInFlightGuard) Close() error {
	return nil
}

// Ensure RedisInFlightGuard implements InFlightGuard
var _ shared.InFlightGuard = (*RedisInFlightGuard)(nil)
