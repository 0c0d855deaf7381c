package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the session repository and in-flight guard the gateway runs on
type Stores struct {
	Sessions onboarding.SessionRepository
	InFlight shared.InFlightGuard
	Backend  string

	client *redis.Client
}

// Ping checks the backing store
func (s *Stores) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the guard and the Redis client, if any
func (s *Stores) Close() error {
	if err := s.InFlight.Close(); err != nil {
		return err
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// StoreFactory creates the session stores based on configuration
type StoreFactory struct {
	redisConfig           config.RedisConfig
	sessionTTL            time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, sessionTTL time.Duration, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		sessionTTL:            sessionTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStores connects to Redis and builds Redis-backed stores
func (f *StoreFactory) CreateRedisStores(ctx context.Context) (*Stores, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := f.redisConfig.KeyPrefix
	return &Stores{
		Sessions: NewRedisSessionRepository(client, prefix+"onboarding:", f.sessionTTL),
		InFlight: NewRedisInFlightGuard(client, prefix+"inflight:"),
		Backend:  "redis",
		client:   client,
	}, nil
}

// CreateInMemoryStores builds process-local stores
// WARNING: In-memory stores do not share state across process instances,
// so a user must always reach the same instance
func (f *StoreFactory) CreateInMemoryStores() *Stores {
	return &Stores{
		Sessions: NewInMemorySessionRepository(),
		InFlight: NewInMemoryInFlightGuard(),
		Backend:  "memory",
	}
}

// CreateStores uses Redis when enabled, falling back to memory if Redis
// cannot be reached and fallback is allowed
func (f *StoreFactory) CreateStores(ctx context.Context) (*Stores, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory session stores")
		return f.CreateInMemoryStores(), nil
	}

	stores, err := f.CreateRedisStores(ctx)
	if err == nil {
		f.logger.Info("using Redis session stores", zap.String("addr", f.redisConfig.Addr()))
		return stores, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for session storage but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session stores. "+
		"Sessions will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStores(), nil
}
