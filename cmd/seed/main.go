package main

import (
	"context"
	"flag"
	"time"

	"food-catalog/internal/config"
	"food-catalog/internal/database"
	"food-catalog/internal/logger"
	"food-catalog/migrations"

	"go.uber.org/zap"
)

func main() {
	status := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	cfg := config.Load()

	log := logger.Must(cfg.Server.Env)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbService, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Unable to connect to the database", zap.Error(err))
	}
	defer dbService.Close()

	if *status {
		if err := database.MigrationStatus(dbService.DB(), migrations.FS, "."); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		return
	}

	// Seeding always brings the schema up to date first
	if err := database.RunMigrations(dbService.DB(), migrations.FS, ".", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	inserted, err := database.SeedCategories(ctx, dbService.DB(), database.DefaultCategories, log)
	if err != nil {
		log.Fatal("Failed to seed categories", zap.Error(err))
	}

	log.Info("Seeding completed",
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(database.DefaultCategories)-inserted),
	)
}
