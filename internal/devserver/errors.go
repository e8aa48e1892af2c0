package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notification-center/internal/store"
)

// apiError mirrors the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, message, hint string) {
	c.AbortWithStatusJSON(status, apiError{Code: code, Message: message, Hint: hint})
}

func badRequest(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "PGRST100", err.Error(), "")
}

// storeError maps a store failure onto a reply.
func storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "PGRST116", err.Error(), "")
	case isUniqueViolation(err):
		abortWithError(c, http.StatusConflict, "23505", err.Error(), "")
	default:
		abortWithError(c, http.StatusInternalServerError, "XX000", err.Error(), "")
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// rows keeps empty results rendering as [] rather than null.
func rows[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
