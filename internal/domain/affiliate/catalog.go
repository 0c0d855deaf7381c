// Package affiliate holds the affiliate-facing value types shared by the
// onboarding flow, the dashboard and the points ledger: brands, rewards,
// missions, the remote user snapshot and tracked link construction.
package affiliate

import "github.com/affiliate/backend/internal/domain/shared"

// Brand is a merchant an affiliate can promote
type Brand struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Logo       string `json:"logo" yaml:"logo"`
	Commission string `json:"commission" yaml:"commission"`
}

// Reward is a catalog item redeemable for a fixed point cost
type Reward struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Points int    `json:"points" yaml:"points"`
	Image  string `json:"image,omitempty" yaml:"image"`
}

// CanRedeem reports whether a balance covers the reward.
// The check is advisory: the platform may still reject the redemption.
func (r Reward) CanRedeem(balance int) bool {
	return balance >= r.Points
}

// Mission is a checklist item shown during onboarding
type Mission struct {
	ID     int    `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Reward string `json:"reward" yaml:"reward"`
	Icon   string `json:"icon" yaml:"icon"`
}

// CountryCode is a dial prefix offered on the profile form
type CountryCode struct {
	Code     string `json:"code" yaml:"code"`
	DialCode string `json:"dial_code" yaml:"dial_code"`
	Name     string `json:"name" yaml:"name"`
}

// Catalog is the static host data served alongside a session
type Catalog struct {
	Brands       []Brand       `json:"brands" yaml:"brands"`
	Rewards      []Reward      `json:"rewards" yaml:"rewards"`
	Missions     []Mission     `json:"missions" yaml:"missions"`
	CountryCodes []CountryCode `json:"country_codes" yaml:"country_codes"`
}

// Brand looks a brand up by ID
func (c *Catalog) Brand(id string) (*Brand, error) {
	for i := range c.Brands {
		if c.Brands[i].ID == id {
			b := c.Brands[i]
			return &b, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Brand not found: "+id)
}

// Reward looks a reward up by ID
func (c *Catalog) Reward(id string) (*Reward, error) {
	for i := range c.Rewards {
		if c.Rewards[i].ID == id {
			r := c.Rewards[i]
			return &r, nil
		}
	}
	return nil, shared.NewDomainError("NOT_FOUND", "Reward not found: "+id)
}

// DialCode returns the dial prefix for a country code, or "" when unknown
func (c *Catalog) DialCode(code string) string {
	for _, cc := range c.CountryCodes {
		if cc.Code == code {
			return cc.DialCode
		}
	}
	return ""
}

// FeaturedBrands returns up to n brands in catalog order
func (c *Catalog) FeaturedBrands(n int) []Brand {
	if n > len(c.Brands) {
		n = len(c.Brands)
	}
	out := make([]Brand, n)
	copy(out, c.Brands[:n])
	return out
}

// DefaultMissions mirrors the four onboarding steps
func DefaultMissions() []Mission {
	return []Mission{
		{ID: 1, Title: "Log masuk pertama kali", Reward: "50 mata", Icon: "trophy"},
		{ID: 2, Title: "Lengkapkan profil anda", Reward: "100 mata", Icon: "user"},
		{ID: 3, Title: "Kongsi pautan affiliate pertama", Reward: "75 mata", Icon: "link"},
		{ID: 4, Title: "Hasilkan jualan pertama", Reward: "200 mata", Icon: "money"},
	}
}
