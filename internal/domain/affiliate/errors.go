package affiliate

import "github.com/affiliate/backend/internal/domain/shared"

// Errors reported for calls to the affiliate platform
var (
	ErrUpstreamUnavailable = shared.NewDomainError("UPSTREAM_UNAVAILABLE", "Affiliate platform is unavailable, please try again")
	ErrUpstreamRejected    = shared.NewDomainError("UPSTREAM_REJECTED", "Affiliate platform rejected the request")
	ErrRedemptionRejected  = shared.NewDomainError("REDEMPTION_REJECTED", "Reward redemption was rejected")
	ErrLinkGeneration      = shared.NewDomainError("LINK_GENERATION_FAILED", "Affiliate link could not be generated")
)

// Rejected returns an ErrUpstreamRejected carrying the platform's message
func Rejected(message string) *shared.DomainError {
	if message == "" {
		return ErrUpstreamRejected
	}
	return shared.NewDomainError(ErrUpstreamRejected.Code, message)
}
