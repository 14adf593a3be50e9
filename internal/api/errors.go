package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"account_system/internal/domain" // Domain errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// statusFor maps a domain error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrDuplicateAccountType),
		errors.Is(err, domain.ErrWrongPassword), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUserDeactivated):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes the error body {"error", "code"} with the mapped status
func respondError(c *gin.Context, err error) {
	status := statusFor(err) // Pick HTTP status
	msg := err.Error()       // Domain errors carry a readable message
	// Never leak internals on unexpected errors
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err,
		}).Error("Request failed")
		msg = http.StatusText(status)
	}
	c.JSON(status, gin.H{"error": msg, "code": domain.Code(err)})
}

// badRequest reports a malformed request body or parameter
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "VALIDATION_ERROR"})
}

// pathID parses a numeric path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "Invalid "+name) // Reject non-numeric ids
		return 0, false
	}
	return uint(v), true
}

// currentUserID returns the authenticated user id set by the JWT middleware
func currentUserID(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}
