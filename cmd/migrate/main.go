package main

import (
	"context"
	"os"

	"github.com/edmetrics/lessons-media-go/internal/config"
	"github.com/edmetrics/lessons-media-go/internal/db"
	"github.com/edmetrics/lessons-media-go/internal/logger"
	"github.com/edmetrics/lessons-media-go/internal/migration"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	// golang-migrate runs multi-statement migration files
	database, err := db.New(cfg.MariaDBDSN+"&multiStatements=true", cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf(ctx, "DB close error: %v", err)
		}
	}()

	if err := migration.MigrateUp(database.DB); err != nil {
		logger.Errorf(ctx, "❌  Migration failed: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "✅  Migrations applied")
}
