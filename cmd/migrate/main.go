package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/factory"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/pg"
	"github.com/DjordjeVuckovic/ticker-news/pkg/config/env"
)

func main() {
	if err := env.LoadDotEnv(os.Getenv("ENV"), "cmd/ingest/.env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	cfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Type != storage.PG {
		slog.Error("Migrations only apply to PostgreSQL storage", "storageType", cfg.Type)
		os.Exit(1)
	}

	if err := migrate(cfg); err != nil {
		slog.Error("Migration failed", "ledgerMode", cfg.LedgerMode, "error", err)
		os.Exit(1)
	}

	slog.Info("✅ Migration completed", "ledgerMode", cfg.LedgerMode)
}

func migrate(cfg *factory.StorageConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return pg.Migrate(ctx, pool, cfg.LedgerMode)
}
