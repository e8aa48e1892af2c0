package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx reply from the backend. Code and Hint carry the
// PostgREST error fields when the body has them.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Code       string
	Message    string
	Hint       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error (%d %s) on %s %s: %s",
			e.StatusCode, e.Code, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("backend error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// APIError caused by a rejected or missing credential.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusForbidden
}

// IsConflict reports whether err is a uniqueness violation.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// retryable reports whether a status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
