package api

import (
	"context"  // Context for service calls
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache lifetime

	"account_system/internal/domain"     // Importing domain models
	"account_system/internal/middleware" // Actor lookup
	"account_system/internal/purge"      // Purge reconciler
	"account_system/internal/users"      // User service
	"account_system/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// SetRoleRequest is the role change payload
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"` // USER, GROUPADMIN or SUPERADMIN
}

// PurgeRequest optionally overrides the retention window of a manual purge
type PurgeRequest struct {
	Days int `json:"days"` // Retention in days, 0 uses the configured value
}

// usersPage is the cached shape of one admin listing page
type usersPage struct {
	Users      []domain.User `json:"users"`       // Users with details
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int64         `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
}

// ListUsersHandler returns all users with their details, soft-deleted ones included
func ListUsersHandler(svc *users.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()                                     // Request context for Redis and DB
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))           // Invalid values fall back in the service
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20")) // Capped by the service
		// Create a cache key based on pagination parameters
		cacheKey := utils.AdminUsersCachePrefix + "page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached usersPage
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		p, err := svc.List(ctx, page, pageSize) // Fetch one page
		if err != nil {
			respondError(c, err)
			return
		}
		resp := usersPage{
			Users:      p.Users,      // List of users
			Page:       p.Page,       // Current page
			PageSize:   p.PageSize,   // Page size
			Total:      p.Total,      // Total number of users
			TotalPages: p.TotalPages, // Total pages
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, ttl)
		c.JSON(http.StatusOK, gin.H{
			"users":       resp.Users,
			"page":        resp.Page,
			"page_size":   resp.PageSize,
			"total":       resp.Total,
			"total_pages": resp.TotalPages,
			"cached":      false, // Indicate response is not from cache
		})
	}
}

// AdminDeleteUserHandler soft-deletes another user
func AdminDeleteUserHandler(svc *users.Service, rdb *redis.Client) gin.HandlerFunc {
	return adminUserTransition(rdb, svc.SoftDelete)
}

// AdminRestoreUserHandler restores a soft-deleted user
func AdminRestoreUserHandler(svc *users.Service, rdb *redis.Client) gin.HandlerFunc {
	return adminUserTransition(rdb, svc.Restore)
}

// adminUserTransition applies a lifecycle transition to the user in the path
func adminUserTransition(rdb *redis.Client, apply func(ctx context.Context, actor domain.Actor, targetID uint) (*domain.UserDetails, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse target user id
		if !ok {
			return
		}
		actor, _ := middleware.CurrentActor(c) // Set by ActorMiddleware
		details, err := apply(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		c.JSON(http.StatusOK, details)
	}
}

// SetRoleHandler changes the role of a user
func SetRoleHandler(svc *users.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id") // Parse target user id
		if !ok {
			return
		}
		var req SetRoleRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
		role, err := domain.ParseRole(req.Role) // Reject unknown roles
		if err != nil {
			respondError(c, err)
			return
		}
		actor, _ := middleware.CurrentActor(c) // Set by ActorMiddleware
		details, err := svc.SetRole(c.Request.Context(), actor, id, role)
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.DeleteCachePrefix(c.Request.Context(), rdb, utils.AdminUsersCachePrefix) // Invalidate admin user listings
		c.JSON(http.StatusOK, details)
	}
}

// PurgeHandler runs one purge batch on demand. Cache invalidation is the
// reconciler's purged hook, shared with the purge command.
func PurgeHandler(r *purge.Reconciler, defaultDays int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PurgeRequest // Body is optional
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "Invalid request")
				return
			}
		}
		days := defaultDays // Configured retention
		if req.Days > 0 {
			days = req.Days // Manual override
		}
		res, err := r.RunDays(c.Request.Context(), days)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cutoff":     res.Cutoff,        // Users deleted before this were eligible
			"candidates": res.Candidates,    // Eligible at selection time
			"purged":     res.Purged,        // Removed
			"skipped":    res.Skipped,       // Restored since selection
			"failed":     res.Failed,        // Retried on the next run
			"user_ids":   res.PurgedUserIDs, // Removed user ids
		})
	}
}
