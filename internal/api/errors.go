package api

import (
	"errors"
	"log/slog"
	"net/http"

	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// statusFor maps a service error kind onto an HTTP status. Anything that does
// not carry a kind is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": message}. Server faults are logged with
// the request's trace id and reported with a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed",
			"trace_id", traceID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		abortWithError(c, code, internalErrorMessage)
		return
	}
	abortWithError(c, code, err.Error())
}
