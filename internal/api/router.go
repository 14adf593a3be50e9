package api

import (
	"time" // Cache lifetime

	"account_system/internal/accounts"   // Account service
	"account_system/internal/auth"       // Auth gateway
	"account_system/internal/domain"     // Roles
	"account_system/internal/lifecycle"  // Soft delete and restore
	"account_system/internal/middleware" // JWT and role middleware
	"account_system/internal/purge"      // Purge reconciler
	"account_system/internal/users"      // User service

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
)

// Deps bundles everything the routes need
type Deps struct {
	Auth       *auth.Service      // Auth gateway
	Users      *users.Service     // Profiles and admin views
	Accounts   *accounts.Service  // Account CRUD
	Lifecycle  *lifecycle.Service // Soft delete and restore
	Reconciler *purge.Reconciler  // Manual purge
	Redis      *redis.Client      // Optional cache, nil disables it
	JWTSecret  string             // Access token secret
	CacheTTL   time.Duration      // Lifetime of cached listings
	PurgeDays  int                // Retention of a manual purge
	ExposeLink bool               // Echo reset links in responses
}

// Register mounts every route on r
func Register(r *gin.Engine, d Deps) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus scrape endpoint

	authed := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(d.JWTSecret), // Validate access token
		middleware.ActorMiddleware(d.Auth),        // Resolve role, reject deactivated users
	}

	// Public auth routes
	pub := r.Group("/auth")
	pub.POST("/signup", SignupHandler(d.Auth, d.Redis))                       // Registration endpoint
	pub.POST("/login", LoginHandler(d.Auth))                                  // Login endpoint
	pub.POST("/refresh", RefreshHandler(d.Auth))                              // Token refresh endpoint
	pub.POST("/forget-password", ForgetPasswordHandler(d.Auth, d.ExposeLink)) // Reset link request
	pub.POST("/reset-password/:uid/:token", ResetPasswordHandler(d.Auth))     // Reset link target
	pub.POST("/restore", RestoreHandler(d.Auth, d.Redis))                     // Self restore with credentials

	// Auth routes for signed-in users
	me := r.Group("/auth", authed...)
	me.POST("/logout", LogoutHandler(d.Auth))                           // Blacklist refresh token
	me.POST("/change-password", ChangePasswordHandler(d.Auth))          // Change password
	me.DELETE("/delete-account", DeleteSelfHandler(d.Auth, d.Redis))    // Self soft-delete
	me.GET("/profile", ProfileHandler(d.Users))                         // Own profile
	me.PUT("/update-profile", UpdateProfileHandler(d.Users, d.Redis))   // Profile update
	me.PATCH("/update-profile", UpdateProfileHandler(d.Users, d.Redis)) // Partial update alias

	// Account routes (owner scoped)
	acc := r.Group("/accounts", authed...)
	acc.GET("", ListAccountsHandler(d.Accounts, d.Redis, d.CacheTTL))     // List accounts
	acc.POST("", CreateAccountHandler(d.Accounts, d.Redis))               // Create account
	acc.GET("/:id", GetAccountHandler(d.Accounts))                        // Get account
	acc.PUT("/:id", UpdateAccountHandler(d.Accounts, d.Redis))            // Update account
	acc.PATCH("/:id", UpdateAccountHandler(d.Accounts, d.Redis))          // Partial update alias
	acc.DELETE("/:id", DeleteAccountHandler(d.Accounts, d.Redis))         // Delete account
	acc.POST("/:id/archive", ArchiveAccountHandler(d.Lifecycle, d.Redis)) // Soft-delete account
	acc.POST("/:id/restore", RestoreAccountHandler(d.Lifecycle, d.Redis)) // Restore account

	// Admin routes (group admins and super admins)
	admin := r.Group("/admin", append(authed, middleware.RequireRole(domain.RoleGroupAdmin))...)
	admin.GET("/users", ListUsersHandler(d.Users, d.Redis, d.CacheTTL))         // List users
	admin.DELETE("/users/:id", AdminDeleteUserHandler(d.Users, d.Redis))        // Soft-delete user
	admin.POST("/users/:id/restore", AdminRestoreUserHandler(d.Users, d.Redis)) // Restore user

	// Super admin only
	root := admin.Group("", middleware.RequireRole(domain.RoleSuperAdmin))
	root.PUT("/users/:id/role", SetRoleHandler(d.Users, d.Redis)) // Change role
	root.POST("/purge", PurgeHandler(d.Reconciler, d.PurgeDays))  // Run purge now
}
