package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIError is an error with an explicit HTTP status. Handlers either build
// one directly or let AbortWithError classify a domain sentinel.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string { return e.Code }

var (
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "resource not found",
	}
	ErrServiceUnavailable = &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: "service temporarily unavailable",
	}
	ErrTooManyRequests = &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    "rate_limited",
		Message: "too many requests",
	}
)

func invalidRequestError() *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body or query could not be parsed",
	}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

// AbortWithError writes a JSON error response. Domain sentinels follow a
// naming convention (invalid_*, *_not_found, forbidden, version_conflict)
// which maps them onto HTTP statuses; anything unrecognized becomes a 500.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	status := classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		}})
		return
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"code":    err.Error(),
		"message": strings.ReplaceAll(err.Error(), "_", " "),
	}})
}

func classify(err error) int {
	code := err.Error()
	switch {
	case code == "forbidden":
		return http.StatusForbidden
	case code == "version_conflict":
		return http.StatusConflict
	case code == "analyst_unavailable":
		return http.StatusServiceUnavailable
	case strings.HasSuffix(code, "_not_found"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "invalid_") ||
		strings.HasPrefix(code, "missing_") ||
		strings.HasPrefix(code, "no_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "duplicate_"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
