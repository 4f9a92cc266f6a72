package shopapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRefreshToken marks a 401 that cannot be recovered because no refresh
// credential is stored. The session is already cleared when this surfaces.
var ErrNoRefreshToken = errors.New("shopapi: no refresh token")

// Error is a failed exchange with the shop API. Status 0 means the request
// never produced a response (network failure, timeout).
type Error struct {
	Status  int
	Message string // message from the remote payload, may be empty
	cause   error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("shop api: network error: %v", e.cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("shop api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("shop api: status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

// Human returns a message safe to show a shopper: the remote-provided message
// when there is one, else a mapped per-status fallback. Never empty.
func (e *Error) Human() string {
	if e.Message != "" {
		return e.Message
	}
	switch {
	case e.Status == 0:
		return "Network error. Please check your connection."
	case e.Status == http.StatusBadRequest:
		return "Invalid request data"
	case e.Status == http.StatusUnauthorized:
		return "Unauthorized. Please sign in."
	case e.Status == http.StatusForbidden:
		return "Access forbidden"
	case e.Status == http.StatusNotFound:
		return "Resource not found"
	case e.Status == http.StatusConflict:
		return "Resource already exists"
	case e.Status >= 500:
		return "Server error. Please try again later."
	default:
		return "An unexpected error occurred"
	}
}

// Human maps any error to a displayable string.
func Human(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Human()
	}
	if err != nil {
		return "An unexpected error occurred"
	}
	return ""
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }
func IsNotFound(err error) bool     { return IsStatus(err, http.StatusNotFound) }

// retryable reports whether an error qualifies for the public client's
// backoff: transport failures and 5xx only, never other 4xx.
func retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 0 || apiErr.Status >= 500
}
