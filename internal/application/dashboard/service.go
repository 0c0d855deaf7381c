// Package dashboard assembles the affiliate home screen from the catalog,
// the host page's user snapshot and the user's onboarding progress.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/affiliate/backend/internal/application/ledger"
	appOnboarding "github.com/affiliate/backend/internal/application/onboarding"
	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeaturedBrandCount is how many brands the dashboard highlights
const FeaturedBrandCount = 3

// SummaryQuery is the host page's snapshot of the user
type SummaryQuery struct {
	Name   string `form:"name"`
	Points int    `form:"points" binding:"min=0"`
}

// SummaryResponse is the dashboard payload
type SummaryResponse struct {
	Greeting         string                          `json:"greeting"`
	Name             string                          `json:"name"`
	Points           int                             `json:"points"`
	FeaturedBrands   []affiliate.Brand               `json:"featured_brands"`
	Rewards          []ledger.RewardResponse         `json:"rewards"`
	Missions         []appOnboarding.MissionResponse `json:"missions"`
	OnboardingActive bool                            `json:"onboarding_active"`
}

// DashboardService builds dashboard summaries
type DashboardService struct {
	sessions onboarding.SessionRepository
	catalog  ledger.CatalogProvider
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardService creates a new DashboardService. now may be nil.
func NewDashboardService(sessions onboarding.SessionRepository, catalog ledger.CatalogProvider, now func() time.Time, logger *zap.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{sessions: sessions, catalog: catalog, now: now, logger: logger}
}

// Summary returns the dashboard for userID. Mission completion comes from
// the user's live onboarding session when there is one.
func (s *DashboardService) Summary(ctx context.Context, userID string, q SummaryQuery) (*SummaryResponse, error) {
	catalog := s.catalog.Catalog()

	var session *onboarding.OnboardingSession
	if s.sessions != nil {
		found, err := s.sessions.FindLiveByUser(ctx, userID)
		switch {
		case err == nil:
			session = found
		case errors.Is(err, shared.ErrNotFound):
		default:
			return nil, err
		}
	}

	name := q.Name
	if name == "" && session != nil {
		name = session.User.Name
	}

	return &SummaryResponse{
		Greeting:         affiliate.Greeting(s.now()),
		Name:             name,
		Points:           q.Points,
		FeaturedBrands:   catalog.FeaturedBrands(FeaturedBrandCount),
		Rewards:          ledger.RewardList(catalog.Rewards, q.Points),
		Missions:         appOnboarding.MissionProgress(catalog, session),
		OnboardingActive: session != nil,
	}, nil
}
