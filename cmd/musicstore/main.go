package main

import (
	"context"

	"musicstore/internal/app/catalog"
	"musicstore/internal/logging"
	"musicstore/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fallback := logging.New(logging.Config{})
		fallback.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	dataStore := store.New(db)
	svc := catalog.New(dataStore, logger)

	if cfg.SeedDemo {
		if err := bootstrapDemoData(ctx, svc); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap demo data")
		}
	}

	albums, err := svc.ListAlbums(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("list catalog")
	}

	logger.Info().Int("albums", len(albums)).Msg("catalog ready")
}
