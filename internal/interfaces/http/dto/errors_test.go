package dto

import (
	"net/http"
	"testing"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeRequestInFlight, http.StatusConflict},
		{ErrCodeSessionClosed, http.StatusGone},
		{ErrCodeInsufficientPoints, http.StatusUnprocessableEntity},
		{ErrCodeUpstreamUnavailable, http.StatusBadGateway},
		{ErrCodeUpstreamRejected, http.StatusUnprocessableEntity},
		{ErrCodeRedemptionRejected, http.StatusUnprocessableEntity},
		{ErrCodeLinkGenerationFailed, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestDomainCodesAreMapped(t *testing.T) {
	domainErrors := []*shared.DomainError{
		shared.ErrNotFound,
		shared.ErrInvalidInput,
		shared.ErrConcurrencyConflict,
		shared.ErrUnauthorized,
		shared.ErrForbidden,
		shared.ErrInvalidState,
		shared.ErrRequestInFlight,
		shared.ErrSessionClosed,
		shared.ErrInsufficientPoints,
		affiliate.ErrUpstreamUnavailable,
		affiliate.ErrUpstreamRejected,
		affiliate.ErrRedemptionRejected,
		affiliate.ErrLinkGeneration,
	}
	for _, e := range domainErrors {
		_, ok := ErrorCodeHTTPStatus[e.Code]
		assert.True(t, ok, "no HTTP status for %s", e.Code)
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", DetailsFromFields(map[string]string{
		"phone":    "Phone number is required",
		"fullName": "Full name is required",
	}))

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, []ValidationDetail{
		{Field: "fullName", Message: "Full name is required"},
		{Field: "phone", Message: "Phone number is required"},
	}, resp.Error.Details)
}
