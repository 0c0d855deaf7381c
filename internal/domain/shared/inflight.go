package shared

import (
	"context"
	"time"
)

// InFlightGuard is a short-lived lock that rejects duplicate submissions of
// the same action while the first one is still waiting on the upstream.
type InFlightGuard interface {
	// Acquire takes the lock for key with a TTL.
	// Returns true if the lock was newly taken, false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops the lock for key. Releasing an unknown key is not an error.
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}

// DefaultInFlightTTL bounds how long an abandoned lock can block retries
const DefaultInFlightTTL = 30 * time.Second
