package dto

import (
	"net/http"
	"sort"
)

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Session and resource error codes, shared with the domain layer
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeRequestInFlight     = "REQUEST_IN_FLIGHT"
	ErrCodeSessionClosed       = "SESSION_CLOSED"
	ErrCodeInsufficientPoints  = "INSUFFICIENT_POINTS"
)

// Upstream platform error codes
const (
	ErrCodeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected     = "UPSTREAM_REJECTED"
	ErrCodeRedemptionRejected   = "REDEMPTION_REJECTED"
	ErrCodeLinkGenerationFailed = "LINK_GENERATION_FAILED"
)

// Transport error codes
const (
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRequestInFlight:     http.StatusConflict,
	ErrCodeSessionClosed:       http.StatusGone,
	ErrCodeInsufficientPoints:  http.StatusUnprocessableEntity,

	ErrCodeUpstreamUnavailable:  http.StatusBadGateway,
	ErrCodeUpstreamRejected:     http.StatusUnprocessableEntity,
	ErrCodeRedemptionRejected:   http.StatusUnprocessableEntity,
	ErrCodeLinkGenerationFailed: http.StatusUnprocessableEntity,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DetailsFromFields converts a field -> message map into details sorted by field
func DetailsFromFields(fields map[string]string) []ValidationDetail {
	details := make([]ValidationDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ValidationDetail{Field: field, Message: msg})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return details
}
