package middleware

import (
	"context"  // Context for the user lookup
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"account_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// UserLoader loads the user behind a token, rejecting deactivated users when configured
type UserLoader interface {
	ActiveUser(ctx context.Context, userID uint) (*domain.User, error)
}

// ActorMiddleware resolves the authenticated user and its role on each request
func ActorMiddleware(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		user, err := users.ActiveUser(c.Request.Context(), userID.(uint)) // Fetch user with details
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUserDeactivated):
			// Soft-deleted users must restore first
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "This user has been deactivated", "code": domain.Code(err)})
			return
		case errors.Is(err, domain.ErrNotFound):
			// Token of a user that no longer exists
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found", "code": "UNAUTHORIZED"})
			return
		default:
			logrus.WithError(err).Error("Failed to load actor")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable", "code": domain.Code(err)})
			return
		}
		role := user.Details.Role // Role lives on the details row
		if role == "" {
			role = domain.RoleUser // Users without details act as regular users
		}
		c.Set("actor", domain.Actor{UserID: user.ID, Role: role}) // Store actor in context
		c.Next()                                                  // Proceed to the next handler
	}
}

// RequireRole allows only the given roles; a super admin is always allowed
func RequireRole(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c) // Actor set by ActorMiddleware
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			return
		}
		// Super admins pass every role check
		if actor.Role == domain.RoleSuperAdmin {
			c.Next()
			return
		}
		// Check if the actor holds one of the allowed roles
		for _, r := range allowed {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "code": "FORBIDDEN"})
	}
}

// CurrentActor returns the actor stored by ActorMiddleware
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	v, exists := c.Get("actor")
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}
