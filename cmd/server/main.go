package main

import (
	"context"   // Context for Redis and shutdown
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Process signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Shutdown timeout

	"account_system/internal/accounts"  // Account service
	"account_system/internal/api"       // Custom package for API handlers
	"account_system/internal/auth"      // Auth gateway
	"account_system/internal/config"    // Custom package for configuration
	"account_system/internal/db"        // Database connection
	"account_system/internal/lifecycle" // Soft delete and restore
	"account_system/internal/purge"     // Purge reconciler
	"account_system/internal/queue"     // Event publisher
	"account_system/internal/store"     // Data access
	"account_system/internal/users"     // User service
	"account_system/internal/utils"     // Password policy

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	gdb, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire services
	st := store.New(gdb)                    // Data access
	publisher := queue.New(cfg.RabbitMQURL) // RabbitMQ, or log only when unset
	lc := lifecycle.NewService(st)          // Soft delete and restore
	authSvc, err := auth.NewService(st, lc, auth.NewRedisBlacklist(redisClient), publisher, auth.Options{
		JWTSecret:          cfg.JWTSecret,          // Token secret
		AccessTTL:          cfg.AccessTTL,          // Access token lifetime
		RefreshTTL:         cfg.RefreshTTL,         // Refresh token lifetime
		ResetTTL:           cfg.ResetTTL,           // Reset link lifetime
		BcryptCost:         cfg.BcryptCost,         // Hash cost
		DefaultAccountType: cfg.DefaultAccountType, // Account created at signup
		BlockSoftDeleted:   cfg.BlockSoftDeletedLogin,
		PublicBaseURL:      cfg.PublicBaseURL,
		Password: utils.PasswordPolicy{
			MinLength:  cfg.PasswordMinLength,
			MinUpper:   cfg.PasswordMinUpper,
			MinDigit:   cfg.PasswordMinDigit,
			MinSpecial: cfg.PasswordMinSpecial,
		},
	})
	if err != nil {
		logrus.Fatalf("invalid auth configuration: %v", err)
	}
	accountSvc, err := accounts.NewService(st, accounts.Options{
		DefaultType:    cfg.DefaultAccountType,      // Type used when none is given
		HideSoftDelete: cfg.HideSoftDeletedAccounts, // Listing filter
	})
	if err != nil {
		logrus.Fatalf("invalid account configuration: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.Register(r, api.Deps{
		Auth:       authSvc,
		Users:      users.NewService(st, lc),
		Accounts:   accountSvc,
		Lifecycle:  lc,
		Reconciler: purge.NewReconciler(st,
			purge.WithPublisher(publisher),
			purge.WithPurgedHook(utils.PurgedCacheInvalidator(redisClient)), // Purged users leave cached listings
		),
		Redis:      redisClient,
		JWTSecret:  cfg.JWTSecret,
		CacheTTL:   cfg.CacheTTL,
		PurgeDays:  cfg.PurgeRetentionDays,
		ExposeLink: !cfg.IsProd, // Reset links are echoed only in development
	})

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for interrupt and shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown failed: %v", err)
	}
	_ = redisClient.Close()
	logrus.Info("Server stopped")
}
