// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Message string `json:"message"`
}

func New(msg string) *APIError {
	return &APIError{Message: msg}
}

// ValidationError lists the required fields missing or malformed on a write.
type ValidationError struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields"`
}

func NewValidation(fields []string) *ValidationError {
	return &ValidationError{Message: "Missing or invalid required fields", Fields: fields}
}

func (e *ValidationError) Error() string { return e.Message }

// Sentinel errors form the service-layer taxonomy. Handlers map them to
// HTTP statuses: ErrNotFound → 404, ErrForbidden → 403,
// ErrStoreUnavailable → 500. Anything else is treated as 500.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrStoreUnavailable = errors.New("store unavailable")
)
