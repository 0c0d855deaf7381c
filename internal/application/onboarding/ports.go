package onboarding

import (
	"context"

	"github.com/affiliate/backend/internal/domain/affiliate"
)

// ProfilePayload is the body sent to the platform when the profile step is submitted
type ProfilePayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PaymentMethod  string `json:"payment_method"`
	PaymentDetails string `json:"payment_details"`
}

// TransactionCheckResult is the platform's answer to a first-sale check
type TransactionCheckResult struct {
	HasTransaction bool                   `json:"has_transaction"`
	Transaction    *affiliate.Transaction `json:"transaction,omitempty"`
}

// PlatformClient is the subset of the affiliate platform the onboarding flow writes to.
// Implementations return errors wrapping affiliate.ErrUpstreamUnavailable or
// affiliate.ErrUpstreamRejected.
type PlatformClient interface {
	SaveProfile(ctx context.Context, payload ProfilePayload) error
	MarkShareMission(ctx context.Context) error
	CheckFirstTransaction(ctx context.Context) (*TransactionCheckResult, error)
	CompleteOnboarding(ctx context.Context) error
}

// CatalogProvider supplies the static host data
type CatalogProvider interface {
	Catalog() *affiliate.Catalog
}
