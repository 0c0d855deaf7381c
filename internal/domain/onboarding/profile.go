package onboarding

import "strings"

// PaymentMethod is how the affiliate wants commissions paid out
type PaymentMethod string

const (
	PaymentMethodPayPal  PaymentMethod = "paypal"
	PaymentMethodBank    PaymentMethod = "bank"
	PaymentMethodEWallet PaymentMethod = "ewallet"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPayPal, PaymentMethodBank, PaymentMethodEWallet:
		return true
	}
	return false
}

// RequiresDetails reports whether the method needs payment details.
// E-wallet payouts are keyed on the phone number.
func (m PaymentMethod) RequiresDetails() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodBank
}

// ProfileForm is the profile step input. It is validated and forwarded to
// the platform, never stored on the session.
type ProfileForm struct {
	FullName       string        `json:"fullName" validate:"required"`
	Email          string        `json:"email" validate:"required,contains=@"`
	Phone          string        `json:"phone" validate:"required"`
	CountryCode    string        `json:"countryCode,omitempty"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" validate:"oneof=paypal bank ewallet"`
	PaymentDetails string        `json:"paymentDetails" validate:"required_if=PaymentMethod paypal,required_if=PaymentMethod bank"`
}

// Normalize trims every field
func (f ProfileForm) Normalize() ProfileForm {
	return ProfileForm{
		FullName:       strings.TrimSpace(f.FullName),
		Email:          strings.TrimSpace(f.Email),
		Phone:          strings.TrimSpace(f.Phone),
		CountryCode:    strings.TrimSpace(f.CountryCode),
		PaymentMethod:  PaymentMethod(strings.ToLower(strings.TrimSpace(string(f.PaymentMethod)))),
		PaymentDetails: strings.TrimSpace(f.PaymentDetails),
	}
}

// FullPhone prefixes the phone number with a dial code unless it already
// carries an international prefix
func (f ProfileForm) FullPhone(dialCode string) string {
	if dialCode == "" || strings.HasPrefix(f.Phone, "+") {
		return f.Phone
	}
	return dialCode + strings.TrimLeft(f.Phone, "0")
}
