// Package catalog loads the static brand, reward, mission and country code
// data served by the gateway.
package catalog

import (
	"fmt"
	"os"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"gopkg.in/yaml.v3"
)

// Provider serves a catalog loaded once at startup
type Provider struct {
	catalog *affiliate.Catalog
}

// NewProvider wraps an already loaded catalog
func NewProvider(c *affiliate.Catalog) *Provider {
	return &Provider{catalog: c}
}

// Catalog returns the loaded catalog
func (p *Provider) Catalog() *affiliate.Catalog {
	return p.catalog
}

// Load reads the catalog from path. An empty path returns the built-in catalog.
func Load(path string) (*Provider, error) {
	if path == "" {
		return NewProvider(Default()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	c, err := LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return NewProvider(c), nil
}

// LoadFromBytes parses a YAML catalog. Sections left out of the document
// fall back to the built-in defaults.
func LoadFromBytes(data []byte) (*affiliate.Catalog, error) {
	var c affiliate.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&c)

	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *affiliate.Catalog) {
	def := Default()
	if len(c.Brands) == 0 {
		c.Brands = def.Brands
	}
	if len(c.Rewards) == 0 {
		c.Rewards = def.Rewards
	}
	if len(c.Missions) == 0 {
		c.Missions = def.Missions
	}
	if len(c.CountryCodes) == 0 {
		c.CountryCodes = def.CountryCodes
	}
}

func validate(c *affiliate.Catalog) error {
	brandIDs := make(map[string]bool, len(c.Brands))
	for i, b := range c.Brands {
		if b.ID == "" || b.Name == "" {
			return fmt.Errorf("brands[%d]: id and name are required", i)
		}
		if brandIDs[b.ID] {
			return fmt.Errorf("brands[%d]: duplicate id %q", i, b.ID)
		}
		brandIDs[b.ID] = true
	}

	rewardIDs := make(map[string]bool, len(c.Rewards))
	for i, r := range c.Rewards {
		if r.ID == "" || r.Name == "" {
			return fmt.Errorf("rewards[%d]: id and name are required", i)
		}
		if r.Points <= 0 {
			return fmt.Errorf("rewards[%d]: points must be positive", i)
		}
		if rewardIDs[r.ID] {
			return fmt.Errorf("rewards[%d]: duplicate id %q", i, r.ID)
		}
		rewardIDs[r.ID] = true
	}

	for i, cc := range c.CountryCodes {
		if cc.Code == "" || cc.DialCode == "" {
			return fmt.Errorf("country_codes[%d]: code and dial_code are required", i)
		}
	}
	return nil
}

// Default returns the built-in catalog
func Default() *affiliate.Catalog {
	return &affiliate.Catalog{
		Brands: []affiliate.Brand{
			{ID: "1", Name: "Tech Gadget", Logo: "/images/brands/tech-gadget.png", Commission: "Sehingga 10%"},
			{ID: "2", Name: "Fashion Hub", Logo: "/images/brands/fashion-hub.png", Commission: "Sehingga 15%"},
			{ID: "3", Name: "Home Living", Logo: "/images/brands/home-living.png", Commission: "Sehingga 8%"},
			{ID: "4", Name: "Beauty Corner", Logo: "/images/brands/beauty-corner.png", Commission: "Sehingga 12%"},
		},
		Rewards: []affiliate.Reward{
			{ID: "1", Name: "Baucar RM10", Points: 500, Image: "/images/rewards/voucher-10.png"},
			{ID: "2", Name: "Baucar RM25", Points: 1000, Image: "/images/rewards/voucher-25.png"},
			{ID: "3", Name: "Tumbler Eksklusif", Points: 300, Image: "/images/rewards/tumbler.png"},
		},
		Missions: affiliate.DefaultMissions(),
		CountryCodes: []affiliate.CountryCode{
			{Code: "MY", DialCode: "+60", Name: "Malaysia"},
			{Code: "SG", DialCode: "+65", Name: "Singapore"},
			{Code: "ID", DialCode: "+62", Name: "Indonesia"},
			{Code: "BN", DialCode: "+673", Name: "Brunei"},
		},
	}
}
