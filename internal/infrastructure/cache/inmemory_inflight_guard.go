package cache

import (
	"context"
	"sync"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
)

// entry represents a held lock with expiration
type entry struct {
	expiresAt time.Time
}

// InMemoryInFlightGuard implements InFlightGuard using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryInFlightGuard struct {
	mu        sync.RWMutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryInFlightGuard creates a new in-memory guard
// It starts a background goroutine to clean up expired locks
func NewInMemoryInFlightGuard() *InMemoryInFlightGuard {
	g := &InMemoryInFlightGuard{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupLoop()

	return g
}

// Acquire takes the lock for key with a TTL
// Returns true if the lock was newly taken, false if it is already held
func (g *InMemoryInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if e, exists := g.entries[key]; exists && now.Before(e.expiresAt) {
		return false, nil
	}

	g.entries[key] = entry{expiresAt: now.Add(ttl)}
	return true, nil
}

// Release drops the lock for key
func (g *InMemoryInFlightGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (g *InMemoryInFlightGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired locks
func (g *InMemoryInFlightGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *InMemoryInFlightGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, e := range g.entries {
		if !now.Before(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of entries in the guard (for testing/monitoring)
func (g *InMemoryInFlightGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Ensure InMemoryInFlightGuard implements InFlightGuard
var _ shared.InFlightGuard = (*InMemoryInFlightGuard)(nil)
