package main

import (
	"context" // Context for seeding
	"flag"    // Command line flags

	"account_system/internal/config" // Custom import path (Config)
	"account_system/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	seed := flag.Bool("seed", false, "create the initial users after migrating") // Seed flag
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true}) // Setup logger
	cfg := config.LoadConfig()                                      // Load configuration

	gdb := db.Migrate(cfg.DSN()) // Migrate the schema
	if !*seed {
		return
	}
	n, err := db.Seed(context.Background(), gdb, db.DefaultSeedUsers, cfg.DefaultAccountType, cfg.BcryptCost)
	if err != nil {
		logrus.Fatalf("seeding failed: %v", err)
	}
	logrus.WithField("created", n).Info("Seeding completed.")
}
