package affiliate

import (
	"errors"
	"testing"
	"time"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{
		Brands: []Brand{
			{ID: "b1", Name: "Tech Gadget", Commission: "10%"},
			{ID: "b2", Name: "Beauty Box", Commission: "15%"},
			{ID: "b3", Name: "Fresh Mart", Commission: "5%"},
			{ID: "b4", Name: "Sport Hub", Commission: "8%"},
		},
		Rewards: []Reward{
			{ID: "r1", Name: "Baucar RM10", Points: 500},
		},
		CountryCodes: []CountryCode{
			{Code: "MY", DialCode: "+60", Name: "Malaysia"},
		},
	}
}

func TestReward_CanRedeem(t *testing.T) {
	reward := Reward{ID: "r1", Points: 500}

	assert.False(t, reward.CanRedeem(300))
	assert.True(t, reward.CanRedeem(500))
	assert.True(t, reward.CanRedeem(750))
}

func TestCatalog_Lookups(t *testing.T) {
	catalog := testCatalog()

	t.Run("brand found", func(t *testing.T) {
		brand, err := catalog.Brand("b2")
		require.NoError(t, err)
		assert.Equal(t, "Beauty Box", brand.Name)
	})

	t.Run("brand missing", func(t *testing.T) {
		_, err := catalog.Brand("nope")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("reward missing", func(t *testing.T) {
		_, err := catalog.Reward("nope")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("dial code", func(t *testing.T) {
		assert.Equal(t, "+60", catalog.DialCode("MY"))
		assert.Equal(t, "", catalog.DialCode("SG"))
	})

	t.Run("returned brand is a copy", func(t *testing.T) {
		brand, err := catalog.Brand("b1")
		require.NoError(t, err)
		brand.Name = "changed"
		assert.Equal(t, "Tech Gadget", catalog.Brands[0].Name)
	})
}

func TestCatalog_FeaturedBrands(t *testing.T) {
	catalog := testCatalog()

	featured := catalog.FeaturedBrands(3)
	require.Len(t, featured, 3)
	assert.Equal(t, "b1", featured[0].ID)
	assert.Equal(t, "b3", featured[2].ID)

	assert.Len(t, catalog.FeaturedBrands(10), 4)
}

func TestRemoteUser_Code(t *testing.T) {
	assert.Equal(t, "ALEXJ25", RemoteUser{}.Code())
	assert.Equal(t, "ALEXJ25", RemoteUser{AffiliateCode: "  "}.Code())
	assert.Equal(t, "SITI88", RemoteUser{AffiliateCode: "SITI88"}.Code())
}

func TestGreeting(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 1, hour, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, "Selamat Pagi", Greeting(at(0)))
	assert.Equal(t, "Selamat Pagi", Greeting(at(11)))
	assert.Equal(t, "Selamat Petang", Greeting(at(12)))
	assert.Equal(t, "Selamat Petang", Greeting(at(17)))
	assert.Equal(t, "Selamat Malam", Greeting(at(18)))
	assert.Equal(t, "Selamat Malam", Greeting(at(23)))
}
