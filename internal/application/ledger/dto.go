package ledger

import "github.com/affiliate/backend/internal/domain/affiliate"

// GenerateLinkRequest asks the platform for a tracked link
type GenerateLinkRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
}

// GenerateLinkResponse carries the platform-issued link
type GenerateLinkResponse struct {
	BrandID       string `json:"brand_id"`
	AffiliateLink string `json:"affiliate_link"`
}

// RedeemRequest carries the balance the page currently displays.
// It only feeds the advisory guard; the platform decides.
type RedeemRequest struct {
	Balance int `json:"balance" binding:"min=0"`
}

// RedeemResponse reports an accepted redemption
type RedeemResponse struct {
	RewardID string `json:"reward_id"`
	Points   int    `json:"points"`
	Message  string `json:"message,omitempty"`
}

// RewardResponse is a catalog reward with its redeemability for a balance
type RewardResponse struct {
	affiliate.Reward
	Redeemable bool `json:"redeemable"`
}

// RewardList evaluates every reward against balance
func RewardList(rewards []affiliate.Reward, balance int) []RewardResponse {
	out := make([]RewardResponse, 0, len(rewards))
	for _, r := range rewards {
		out = append(out, RewardResponse{Reward: r, Redeemable: r.CanRedeem(balance)})
	}
	return out
}
