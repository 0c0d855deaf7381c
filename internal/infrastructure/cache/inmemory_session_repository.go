package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemorySessionRepository stores onboarding sessions in process memory.
// Sessions are kept serialized so callers never share a pointer with the store.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID][]byte
	versions map[uuid.UUID]int
	byUser   map[string]uuid.UUID
}

// NewInMemorySessionRepository creates an empty repository
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[uuid.UUID][]byte),
		versions: make(map[uuid.UUID]int),
		byUser:   make(map[string]uuid.UUID),
	}
}

// FindByID returns a copy of the stored session
func (r *InMemorySessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.OnboardingSession, error) {
	r.mu.RLock()
	data, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, shared.ErrNotFound
	}
	return decodeSession(data)
}

// FindLiveByUser returns the user's active session
func (r *InMemorySessionRepository) FindLiveByUser(ctx context.Context, userID string) (*onboarding.OnboardingSession, error) {
	r.mu.RLock()
	id, ok := r.byUser[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, shared.ErrNotFound
	}

	session, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsLive() {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// Save stores the session if its version matches the stored one, then
// increments the version on both the stored copy and the caller's session.
// A previously stored session whose entry was deleted is not re-created.
func (r *InMemorySessionRepository) Save(ctx context.Context, session *onboarding.OnboardingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.versions[session.ID]
	switch {
	case exists && stored != session.Version:
		return shared.ErrConcurrencyConflict
	case exists:
		session.IncrementVersion()
	case session.IsStored():
		return shared.ErrNotFound
	}

	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	r.sessions[session.ID] = data
	r.versions[session.ID] = session.Version
	session.MarkStored()

	if session.IsLive() {
		r.byUser[session.UserID] = session.ID
	} else if r.byUser[session.UserID] == session.ID {
		delete(r.byUser, session.UserID)
	}
	return nil
}

// Delete removes the session and its user index entry
func (r *InMemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.sessions, id)
	delete(r.versions, id)
	for userID, sid := range r.byUser {
		if sid == id {
			delete(r.byUser, userID)
		}
	}
	return nil
}

// Count returns the number of stored sessions (for testing/monitoring)
func (r *InMemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func encodeSession(session *onboarding.OnboardingSession) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*onboarding.OnboardingSession, error) {
	var session onboarding.OnboardingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	session.MarkStored()
	return &session, nil
}

// Ensure InMemorySessionRepository implements SessionRepository
var _ onboarding.SessionRepository = (*InMemorySessionRepository)(nil)
