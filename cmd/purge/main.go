package main

import (
	"context"   // Cancellation
	"flag"      // Command line flags
	"os"        // Process signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Ticker

	"account_system/internal/config" // Configuration
	"account_system/internal/db"     // Database connection
	"account_system/internal/purge"  // Purge reconciler
	"account_system/internal/queue"  // Event publisher
	"account_system/internal/store"  // Data access
	"account_system/internal/utils"  // Cache invalidation

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// Runs the purge once, or every -every until interrupted
func main() {
	cfg := config.LoadConfig() // Load configuration

	days := flag.Int("days", cfg.PurgeRetentionDays, "purge users soft-deleted more than this many days ago")
	every := flag.Duration("every", 0, "repeat the purge at this interval, 0 runs once")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true}) // Setup logger

	gdb, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional here: without it cached listings expire with their TTL
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.Warnf("Redis unavailable, purged users stay cached until expiry: %v", err)
			rdb = nil
		}
	}

	r := purge.NewReconciler(store.New(gdb),
		purge.WithPublisher(queue.New(cfg.RabbitMQURL)),
		purge.WithPurgedHook(utils.PurgedCacheInvalidator(rdb)),
		purge.WithLogger(logrus.WithField("job", "purge")),
	)

	if *every <= 0 {
		if _, err := r.RunDays(ctx, *days); err != nil {
			logrus.Fatalf("purge failed: %v", err)
		}
		return
	}

	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		if _, err := r.RunDays(ctx, *days); err != nil {
			logrus.Errorf("purge failed: %v", err) // Retried on the next tick
		}
		select {
		case <-ctx.Done():
			logrus.Info("Purge loop stopped")
			return
		case <-ticker.C:
		}
	}
}
