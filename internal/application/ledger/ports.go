package ledger

import (
	"context"

	"github.com/affiliate/backend/internal/domain/affiliate"
)

// LinkResult is the platform's reply to a link generation request
type LinkResult struct {
	Success       bool   `json:"success"`
	AffiliateLink string `json:"affiliate_link"`
}

// RedeemResult is the platform's reply to a redemption
type RedeemResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PlatformClient is the subset of the affiliate platform the ledger talks to.
// The platform owns the points balance; the gateway never writes it.
type PlatformClient interface {
	GenerateLink(ctx context.Context, brandID string) (*LinkResult, error)
	RedeemReward(ctx context.Context, rewardID string) (*RedeemResult, error)
}

// CatalogProvider supplies the reward catalog
type CatalogProvider interface {
	Catalog() *affiliate.Catalog
}
