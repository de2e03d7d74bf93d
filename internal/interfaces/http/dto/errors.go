package dto

import (
	"errors"
	"net/http"

	"github.com/mandibooks/backend/internal/domain/shared"
)

// Error codes returned in ErrorInfo.Code. Domain codes pass through
// unchanged; the rest are produced by the HTTP layer itself.
const (
	ErrCodeInternal = "INTERNAL_ERROR"

	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInvalidID  = "INVALID_ID"

	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
	ErrCodeForbidden    = "FORBIDDEN"

	ErrCodeTenantMismatch      = "TENANT_MISMATCH"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"

	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInvalidID:  http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// a foreign id is reported as forbidden, never as missing
	ErrCodeTenantMismatch:      http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts an application error into a status and error body.
// Errors that carry no domain code are reported as internal errors without
// leaking their text.
func FromError(err error) (int, ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorInfo{
			Code:    ErrCodeInternal,
			Message: "An unexpected error occurred",
		}
	}

	info := ErrorInfo{Code: de.Code, Message: err.Error()}
	var detailed shared.DetailedError
	if errors.As(err, &detailed) {
		info.Details = detailed.Details()
	}
	return GetHTTPStatus(de.Code), info
}
