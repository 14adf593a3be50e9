package api

import (
	"context"  // Context for cache invalidation
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache lifetime

	"account_system/internal/accounts"  // Account service
	"account_system/internal/domain"    // Importing domain models
	"account_system/internal/lifecycle" // Soft delete and restore
	"account_system/internal/utils"     // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// CreateAccountRequest is the create payload; a blank type uses the default
type CreateAccountRequest struct {
	AccountType  string `json:"account_type"`  // Label, unique per owner
	AccountValue int64  `json:"account_value"` // Initial integer value
}

// UpdateAccountRequest is a partial update; omitted fields are unchanged
type UpdateAccountRequest struct {
	AccountType  *string `json:"account_type"`  // New label
	AccountValue *int64  `json:"account_value"` // New value
}

// invalidateAccounts drops every cached listing of userID
func invalidateAccounts(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = utils.DeleteCachePrefix(ctx, rdb, utils.AccountsCachePrefix(userID))
}

// ListAccountsHandler returns the caller's accounts, ?include_deleted=true shows archived ones
func ListAccountsHandler(svc *accounts.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                             // Request context for Redis and DB
		userID := currentUserID(c)                             // Get userID from context
		includeDeleted := c.Query("include_deleted") == "true" // Optional flag
		// Cache key for the listing
		cacheKey := utils.AccountsCachePrefix(userID) + "all=" + strconv.FormatBool(includeDeleted)
		var cached []domain.Account // Cached listing
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"accounts": cached, "cached": true})
			return
		}
		list, err := svc.List(ctx, userID, includeDeleted) // Fetch from the database
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, list, ttl) // Cache the listing
		c.JSON(http.StatusOK, gin.H{"accounts": list, "cached": false})
	}
}

// CreateAccountHandler adds an account for the caller
func CreateAccountHandler(svc *accounts.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		userID := currentUserID(c) // Owner is always the caller
		account, err := svc.Create(c.Request.Context(), userID, accounts.CreateInput{
			AccountType:  req.AccountType,  // Label
			AccountValue: req.AccountValue, // Initial value
		})
		if err != nil {
			respondError(c, err) // Duplicate type maps to 400
			return
		}
		invalidateAccounts(c.Request.Context(), rdb, userID) // Invalidate listings
		c.JSON(http.StatusCreated, account)
	}
}

// GetAccountHandler returns one of the caller's accounts
func GetAccountHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse account id
		if !ok {
			return
		}
		account, err := svc.Get(c.Request.Context(), currentUserID(c), id) // Owner scoped lookup
		if err != nil {
			respondError(c, err) // Other owners' accounts are not found
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// UpdateAccountHandler partially updates one of the caller's accounts
func UpdateAccountHandler(svc *accounts.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse account id
		if !ok {
			return
		}
		var req UpdateAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		userID := currentUserID(c) // Owner is always the caller
		account, err := svc.Update(c.Request.Context(), userID, id, accounts.UpdateInput{
			AccountType:  req.AccountType,  // New label
			AccountValue: req.AccountValue, // New value
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateAccounts(c.Request.Context(), rdb, userID) // Invalidate listings
		c.JSON(http.StatusOK, account)
	}
}

// DeleteAccountHandler permanently removes one of the caller's accounts
func DeleteAccountHandler(svc *accounts.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse account id
		if !ok {
			return
		}
		userID := currentUserID(c) // Owner is always the caller
		if err := svc.Delete(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		invalidateAccounts(c.Request.Context(), rdb, userID) // Invalidate listings
		c.Status(http.StatusNoContent)
	}
}

// ArchiveAccountHandler soft-deletes one of the caller's accounts
func ArchiveAccountHandler(lc *lifecycle.Service, rdb *redis.Client) gin.HandlerFunc {
	return accountTransition(rdb, lc.SoftDeleteAccount)
}

// RestoreAccountHandler restores one of the caller's archived accounts
func RestoreAccountHandler(lc *lifecycle.Service, rdb *redis.Client) gin.HandlerFunc {
	return accountTransition(rdb, lc.RestoreAccount)
}

// accountTransition runs a lifecycle transition on an account of the caller
func accountTransition(rdb *redis.Client, apply func(ctx context.Context, ownerID, accountID uint) (*domain.Account, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse account id
		if !ok {
			return
		}
		userID := currentUserID(c) // Owner is always the caller
		account, err := apply(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateAccounts(c.Request.Context(), rdb, userID) // Invalidate listings
		c.JSON(http.StatusOK, account)
	}
}
