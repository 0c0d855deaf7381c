package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCatalog struct {
	catalog *affiliate.Catalog
}

func (c staticCatalog) Catalog() *affiliate.Catalog { return c.catalog }

func testCatalog() staticCatalog {
	return staticCatalog{catalog: &affiliate.Catalog{
		Brands: []affiliate.Brand{
			{ID: "1", Name: "Tech Gadget"},
			{ID: "2", Name: "Fashion Hub"},
			{ID: "3", Name: "Home Living"},
			{ID: "4", Name: "Beauty Co"},
		},
		Rewards: []affiliate.Reward{
			{ID: "1", Name: "Baucar RM10", Points: 500},
			{ID: "2", Name: "Tumbler", Points: 300},
		},
		Missions: affiliate.DefaultMissions(),
	}}
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	evening := time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC)

	t.Run("without a live session", func(t *testing.T) {
		svc := NewDashboardService(cache.NewInMemorySessionRepository(), testCatalog(), func() time.Time { return evening }, nil)

		resp, err := svc.Summary(ctx, "user-1", SummaryQuery{Name: "Alex", Points: 300})
		require.NoError(t, err)

		assert.Equal(t, "Selamat Malam", resp.Greeting)
		assert.Equal(t, "Alex", resp.Name)
		assert.Len(t, resp.FeaturedBrands, FeaturedBrandCount)
		assert.Equal(t, "Tech Gadget", resp.FeaturedBrands[0].Name)
		assert.False(t, resp.OnboardingActive)

		redeemable := map[string]bool{}
		for _, r := range resp.Rewards {
			redeemable[r.ID] = r.Redeemable
		}
		assert.Equal(t, map[string]bool{"1": false, "2": true}, redeemable)

		require.Len(t, resp.Missions, 4)
		for _, m := range resp.Missions {
			assert.False(t, m.Completed)
		}
	})

	t.Run("missions follow the live session", func(t *testing.T) {
		repo := cache.NewInMemorySessionRepository()
		session, err := onboarding.NewOnboardingSession("user-2", affiliate.RemoteUser{Name: "Siti"}, evening)
		require.NoError(t, err)
		require.NoError(t, session.Start(evening))
		require.NoError(t, repo.Save(ctx, session))

		svc := NewDashboardService(repo, testCatalog(), func() time.Time { return evening }, nil)
		resp, err := svc.Summary(ctx, "user-2", SummaryQuery{Points: 50})
		require.NoError(t, err)

		assert.True(t, resp.OnboardingActive)
		assert.Equal(t, "Siti", resp.Name, "name falls back to the session snapshot")
		assert.True(t, resp.Missions[0].Completed)
		assert.False(t, resp.Missions[1].Completed)
	})
}

func TestGreetingByHour(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Selamat Pagi"},
		{11, "Selamat Pagi"},
		{12, "Selamat Petang"},
		{17, "Selamat Petang"},
		{18, "Selamat Malam"},
		{23, "Selamat Malam"},
	}
	for _, tt := range tests {
		at := time.Date(2026, 5, 4, tt.hour, 30, 0, 0, time.UTC)
		svc := NewDashboardService(nil, testCatalog(), func() time.Time { return at }, nil)
		resp, err := svc.Summary(context.Background(), "user-1", SummaryQuery{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.Greeting, "hour %d", tt.hour)
	}
}
