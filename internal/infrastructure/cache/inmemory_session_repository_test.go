package cache

import (
	"context"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repoTestNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func newRepoTestSession(t *testing.T, userID string) *onboarding.OnboardingSession {
	t.Helper()
	s, err := onboarding.NewOnboardingSession(userID, affiliate.RemoteUser{
		Name:           "Alex Johnson",
		AffiliateCode:  "ALEXJ25",
		Points:         300,
		FirstTimeLogin: true,
	}, repoTestNow)
	require.NoError(t, err)
	return s
}

func TestInMemorySessionRepository_SaveAndFind(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	require.NoError(t, s.Start(repoTestNow))
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, "user-1", loaded.UserID)
	assert.Equal(t, onboarding.StepProfile, loaded.CurrentStep())
	assert.Equal(t, 50, loaded.LocalPointsTotal())
	assert.True(t, loaded.CelebratedWelcome)
	assert.Empty(t, loaded.GetDomainEvents(), "events are never persisted")
	require.NotNil(t, loaded.Notification)
	assert.True(t, loaded.Notification.ExpiresAt.Equal(s.Notification.ExpiresAt))
}

func TestInMemorySessionRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.Start(repoTestNow))

	again, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepWelcome, again.CurrentStep(), "unsaved changes must not leak into the store")
}

func TestInMemorySessionRepository_PreservesTransaction(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	s.Sale.Transaction = &affiliate.Transaction{
		BrandName:  "Tech Gadget",
		Amount:     decimal.RequireFromString("120.50"),
		Commission: decimal.RequireFromString("12.05"),
	}
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Sale.Transaction)
	assert.True(t, loaded.Sale.Transaction.Commission.Equal(decimal.RequireFromString("12.05")))
}

func TestInMemorySessionRepository_OptimisticConcurrency(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	require.NoError(t, repo.Save(ctx, s))

	first, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)

	require.NoError(t, first.Start(repoTestNow))
	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, s.Version+1, first.Version)

	require.NoError(t, second.Start(repoTestNow))
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, stored.Version)
}

func TestInMemorySessionRepository_FindLiveByUser(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.FindLiveByUser(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("live session is indexed by user", func(t *testing.T) {
		s := newRepoTestSession(t, "user-2")
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindLiveByUser(ctx, "user-2")
		require.NoError(t, err)
		assert.Equal(t, s.ID, found.ID)
	})

	t.Run("dismissed session is no longer live", func(t *testing.T) {
		s := newRepoTestSession(t, "user-3")
		require.NoError(t, repo.Save(ctx, s))
		require.NoError(t, s.Dismiss(repoTestNow))
		require.NoError(t, repo.Save(ctx, s))

		_, err := repo.FindLiveByUser(ctx, "user-3")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInMemorySessionRepository_Delete(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Delete(ctx, s.ID))
	assert.Equal(t, 0, repo.Count())

	_, err := repo.FindByID(ctx, s.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindLiveByUser(ctx, "user-1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestInMemorySessionRepository_SaveAfterDelete(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	s := newRepoTestSession(t, "user-1")
	assert.False(t, s.IsStored())
	require.NoError(t, repo.Save(ctx, s))
	assert.True(t, s.IsStored())

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsStored())

	// the session is deleted while loaded is still held by another request
	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, loaded.Start(repoTestNow))

	err = repo.Save(ctx, loaded)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 0, repo.Count(), "a deleted session is not re-created")

	_, err = repo.FindLiveByUser(ctx, "user-1")
	assert.ErrorIs(t, err, shared.ErrNotFound, "the user index is not restored")
}
