package misskey

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error response from the Misskey API.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Kind    string `json:"kind"`

	HTTPStatus int `json:"-"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("misskey: http %d: %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("misskey: %s: %s (http %d)", e.Code, e.Message, e.HTTPStatus)
}

// IsRateLimit reports whether the request was rate limited.
func (e *Error) IsRateLimit() bool {
	return e.HTTPStatus == http.StatusTooManyRequests || e.Code == "RATE_LIMIT_EXCEEDED"
}

// IsAuth reports whether the access token was missing or rejected.
func (e *Error) IsAuth() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden
}

// Retryable reports whether repeating the request may succeed.
func (e *Error) Retryable() bool {
	return e.IsRateLimit() || e.HTTPStatus >= 500
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrUserNotFound is returned by ResolveUser when no user matches.
var ErrUserNotFound = errors.New("misskey: user not found")
