package onboarding

import (
	"context"

	"github.com/affiliate/backend/internal/domain/shared"
)

// SessionRepository stores live onboarding sessions.
// Save fails with shared.ErrConcurrencyConflict when the stored version
// differs from the version the session was loaded with.
type SessionRepository interface {
	shared.Repository[OnboardingSession]

	// FindLiveByUser returns the user's active session or shared.ErrNotFound
	FindLiveByUser(ctx context.Context, userID string) (*OnboardingSession, error)
}
