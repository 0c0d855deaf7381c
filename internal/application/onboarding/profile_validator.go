package onboarding

import (
	"errors"
	"reflect"
	"strings"

	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/go-playground/validator/v10"
)

// Profile field messages shown inline on the form
const (
	MsgNameRequired          = "Nama diperlukan"
	MsgEmailRequired         = "Emel diperlukan"
	MsgEmailInvalid          = "Emel tidak sah"
	MsgPhoneRequired         = "Nombor telefon diperlukan"
	MsgPaymentMethodInvalid  = "Kaedah pembayaran tidak sah"
	MsgPayPalDetailsRequired = "ID PayPal diperlukan"
	MsgBankDetailsRequired   = "Maklumat bank diperlukan"
)

// ProfileValidator checks the profile step form before it is sent upstream
type ProfileValidator struct {
	validate *validator.Validate
}

// NewProfileValidator creates a validator reporting errors by JSON field name
func NewProfileValidator() *ProfileValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ProfileValidator{validate: v}
}

// Validate returns one message per violated field. An empty map means the
// form is acceptable. The form is trimmed before any rule is applied.
func (v *ProfileValidator) Validate(form onboarding.ProfileForm) map[string]string {
	form = form.Normalize()
	fieldErrors := make(map[string]string)

	err := v.validate.Struct(form)
	if err == nil {
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors["form"] = err.Error()
		return fieldErrors
	}

	for _, fe := range validationErrors {
		if _, exists := fieldErrors[fe.Field()]; exists {
			continue
		}
		fieldErrors[fe.Field()] = profileMessage(fe, form.PaymentMethod)
	}
	return fieldErrors
}

func profileMessage(fe validator.FieldError, method onboarding.PaymentMethod) string {
	switch fe.Field() {
	case "fullName":
		return MsgNameRequired
	case "email":
		if fe.Tag() == "required" {
			return MsgEmailRequired
		}
		return MsgEmailInvalid
	case "phone":
		return MsgPhoneRequired
	case "paymentMethod":
		return MsgPaymentMethodInvalid
	case "paymentDetails":
		if method == onboarding.PaymentMethodBank {
			return MsgBankDetailsRequired
		}
		return MsgPayPalDetailsRequired
	default:
		return "Nilai tidak sah"
	}
}
