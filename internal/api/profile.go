package api

import (
	"net/http" // HTTP status codes

	"account_system/internal/users" // Profile service
	"account_system/internal/utils" // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// UpdateProfileRequest is a partial profile update; omitted fields are unchanged
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`   // Given name
	LastName    *string `json:"last_name"`    // Family name
	Email       *string `json:"email"`        // Email address
	PhoneNumber *string `json:"phone_number"` // Up to 10 digits, empty clears it
}

// ProfileHandler returns the caller's user with details
func ProfileHandler(svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Profile(c.Request.Context(), currentUserID(c)) // Load user and details
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateProfileHandler changes the caller's profile; the role cannot be changed here
func UpdateProfileHandler(svc *users.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		user, err := svc.UpdateProfile(c.Request.Context(), currentUserID(c), users.ProfileInput{
			FirstName:   req.FirstName,   // Given name
			LastName:    req.LastName,    // Family name
			Email:       req.Email,       // Email address
			PhoneNumber: req.PhoneNumber, // Phone number
		})
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		c.JSON(http.StatusOK, user)
	}
}
