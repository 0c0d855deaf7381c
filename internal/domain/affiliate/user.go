package affiliate

import "strings"

// DefaultAffiliateCode is used when the platform has not assigned one yet
const DefaultAffiliateCode = "ALEXJ25"

// RemoteUser is a read-only snapshot of the platform's view of an affiliate.
// The gateway never mutates it as if it were authoritative.
type RemoteUser struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PaymentMethod  string `json:"payment_method"`
	PaymentDetails string `json:"payment_details"`
	AffiliateCode  string `json:"affiliate_code"`
	Points         int    `json:"points"`
	FirstTimeLogin bool   `json:"first_time_login"`
}

// Code returns the affiliate code, falling back to DefaultAffiliateCode
func (u RemoteUser) Code() string {
	if code := strings.TrimSpace(u.AffiliateCode); code != "" {
		return code
	}
	return DefaultAffiliateCode
}
