package main

import (
	"context"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"instaclone/internal/config"
	"instaclone/internal/database"
	"instaclone/internal/logger"
)

func main() {
	log := logger.New("migrate")
	logger.SetDefault(log)

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("Migration complete", "database", cfg.Database.Name)
}
