package api

import (
	"net/http" // HTTP status codes

	"account_system/internal/auth"  // Auth gateway
	"account_system/internal/utils" // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// SignupRequest is the registration payload
type SignupRequest struct {
	Username  string `json:"username" binding:"required"` // Username must be provided
	Email     string `json:"email" binding:"required"`    // Email must be provided
	Password  string `json:"password" binding:"required"` // Password must be provided
	FirstName string `json:"first_name"`                  // Optional given name
	LastName  string `json:"last_name"`                   // Optional family name
}

// CredentialsRequest is used by login and restore
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"` // Refresh token must be provided
}

// ChangePasswordRequest is the change-password payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"` // Current password
	NewPassword string `json:"new_password" binding:"required"` // Replacement password
}

// ForgetPasswordRequest asks for a reset link
type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required"` // Email of the account
}

// ResetPasswordRequest carries the new password for a reset link
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"` // Replacement password
}

// SignupHandler registers a user with its details and default account
func SignupHandler(svc *auth.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Invalid request")
			return
		}
		// Create user, details and default account in one transaction
		user, err := svc.Signup(c.Request.Context(), auth.SignupInput{
			Username:  req.Username,  // Username, lowercased by the service
			Email:     req.Email,     // Email address
			Password:  req.Password,  // Plain password, hashed by the service
			FirstName: req.FirstName, // Given name
			LastName:  req.LastName,  // Family name
		})
		if err != nil {
			respondError(c, err) // Validation, duplicate or store error
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns access and refresh tokens
func LoginHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "Invalid request")
			return
		}
		pair, err := svc.Login(c.Request.Context(), req.Username, req.Password) // Check credentials
		if err != nil {
			respondError(c, err) // Invalid credentials or deactivated user
			return
		}
		c.JSON(http.StatusOK, pair) // Return the token pair
	}
}

// RefreshHandler issues a new access token for a refresh token
func RefreshHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		access, err := svc.Refresh(c.Request.Context(), req.Refresh) // Validate and rotate
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access}) // Return the new access token
	}
}

// LogoutHandler blacklists the caller's refresh token
func LogoutHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		// Revoke the refresh token until it expires
		if err := svc.Logout(c.Request.Context(), currentUserID(c), req.Refresh); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// ChangePasswordHandler replaces the caller's password
func ChangePasswordHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		// Verify the old password and store the new one
		if err := svc.ChangePassword(c.Request.Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}

// ForgetPasswordHandler publishes a password reset link; exposeLink echoes it back outside production
func ForgetPasswordHandler(svc *auth.Service, exposeLink bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgetPasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		link, err := svc.ForgetPassword(c.Request.Context(), req.Email) // Build and publish the link
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"message": "Password reset link sent"} // Default response
		if exposeLink {
			resp["reset_link"] = link // Handy for local development
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ResetPasswordHandler sets a new password from a reset link
func ResetPasswordHandler(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetPasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		// The uid and token come from the link path
		if err := svc.ResetPassword(c.Request.Context(), c.Param("uid"), c.Param("token"), req.NewPassword); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
	}
}

// DeleteSelfHandler soft-deletes the caller
func DeleteSelfHandler(svc *auth.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteSelf(c.Request.Context(), currentUserID(c)); err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		c.JSON(http.StatusOK, gin.H{"message": "User deactivated, it will be purged unless restored"})
	}
}

// RestoreHandler re-activates a soft-deleted user from credentials
func RestoreHandler(svc *auth.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		pair, err := svc.RestoreSelf(c.Request.Context(), req.Username, req.Password) // Restore and log in
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		c.JSON(http.StatusOK, pair)
	}
}
