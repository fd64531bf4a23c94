package otpgate

import (
	"errors"
	"net/http"
)

// ErrorKind enumerates the closed set of failure categories surfaced to the
// boundary layer. Anything outside this set collapses to a detail-free
// internal error when rendered.
type ErrorKind uint8

const (
	// KindInternal is the catch-all for unexpected failures; never operational.
	KindInternal ErrorKind = iota
	// KindNotFound marks a referenced resource as absent.
	KindNotFound
	// KindValidation marks malformed input or a business-rule violation.
	KindValidation
	// KindAuth marks an authentication failure.
	KindAuth
	// KindForbidden marks an authorization failure.
	KindForbidden
	// KindDatabase marks a persistence-layer failure.
	KindDatabase
	// KindRateLimit marks an abuse-lock or throttle denial.
	KindRateLimit
)

// Status maps the kind to its boundary status code. NotFound deliberately
// maps to 400: existing envelope consumers treat 400 as the absent-resource
// status.
func (k ErrorKind) Status() int {
	switch k {
	case KindNotFound, KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindDatabase:
		return http.StatusInternalServerError
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindDatabase:
		return "database"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "internal"
	}
}

// Error is the typed failure every Engine operation returns for expected
// outcomes. It carries a caller-facing message, an optional structured
// details map, and wraps the sentinel that triggered it so callers can keep
// using errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	wrapped error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// Operational reports whether the failure is an expected, user-facing
// outcome. Internal failures are the only non-operational kind.
func (e *Error) Operational() bool {
	return e.Kind != KindInternal
}

// Status is the boundary status code for this error.
func (e *Error) Status() int {
	return e.Kind.Status()
}

func newError(kind ErrorKind, message string, wrapped error) *Error {
	return &Error{Kind: kind, Message: message, wrapped: wrapped}
}

func notFoundError(message string, wrapped error) *Error {
	return newError(KindNotFound, message, wrapped)
}

func validationError(message string, wrapped error) *Error {
	return newError(KindValidation, message, wrapped)
}

func authError(message string, wrapped error) *Error {
	return newError(KindAuth, message, wrapped)
}

func databaseError(message string, wrapped error) *Error {
	return newError(KindDatabase, message, wrapped)
}

func rateLimitError(message string, wrapped error) *Error {
	return newError(KindRateLimit, message, wrapped)
}

// Response is the success envelope consumed by the boundary layer.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Success    bool   `json:"success"`
}

// OK builds a success envelope. Success tracks the status code so a
// boundary can marshal the struct as-is.
func OK(statusCode int, message string, data any) Response {
	return Response{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Success:    statusCode < 400,
	}
}

// ErrorBody is the error envelope consumed by the boundary layer.
type ErrorBody struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Envelope renders any error into a status code and body. Operational
// taxonomy errors surface verbatim; everything else collapses to a generic
// internal error so no detail leaks to the caller.
func Envelope(err error) (int, ErrorBody) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Operational() {
		return apiErr.Status(), ErrorBody{
			Status:  apiErr.Status(),
			Message: apiErr.Message,
			Details: apiErr.Details,
		}
	}

	return http.StatusInternalServerError, ErrorBody{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong, please try again",
	}
}
