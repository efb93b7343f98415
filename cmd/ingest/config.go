package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/api/server"
	"github.com/DjordjeVuckovic/ticker-news/internal/ingest"
	"github.com/DjordjeVuckovic/ticker-news/internal/reader"
	"github.com/DjordjeVuckovic/ticker-news/internal/scheduler"
	"github.com/DjordjeVuckovic/ticker-news/internal/source"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/factory"
	"github.com/DjordjeVuckovic/ticker-news/pkg/apis"
	"github.com/DjordjeVuckovic/ticker-news/pkg/config/env"
	"github.com/DjordjeVuckovic/ticker-news/pkg/stringsutil"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type IngestConfig struct {
	LogLevel slog.Level
	Tickers  *apis.TickerList
	Source   *source.Config
	Server   *server.Config

	Interval     time.Duration
	Workers      int
	Lookback     time.Duration
	Overlap      time.Duration
	FetchTimeout time.Duration
	StartDate    time.Time
	Backfill     bool

	RedisAddr     string
	RedisPassword string
	LeaseTTL      time.Duration

	factory.StorageConfig
}

func (as *AppConfig) Load() (*IngestConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/ingest/.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	cfg := &IngestConfig{
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Backfill:      os.Getenv("BACKFILL") == "true",
	}

	if cfg.LogLevel, err = env.LogLevel(); err != nil {
		return nil, err
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}
	cfg.StorageConfig = *storageCfg

	if cfg.Source, err = source.LoadEnv(); err != nil {
		slog.Error("Failed to load source configuration from environment", "error", err)
		return nil, err
	}

	if cfg.Server, err = server.LoadConfig(); err != nil {
		return nil, err
	}

	if cfg.Tickers, err = loadTickers(); err != nil {
		slog.Error("Failed to load tickers", "error", err)
		return nil, err
	}

	if cfg.Interval, err = env.Duration("INGEST_INTERVAL", scheduler.DefaultInterval); err != nil {
		return nil, err
	}
	if cfg.Workers, err = env.Int("INGEST_WORKERS", scheduler.DefaultWorkers); err != nil {
		return nil, err
	}
	if cfg.Lookback, err = env.Duration("LOOKBACK", ingest.DefaultLookback); err != nil {
		return nil, err
	}
	if cfg.Overlap, err = env.Duration("OVERLAP", ingest.DefaultOverlap); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = env.Duration("FETCH_TIMEOUT", ingest.DefaultFetchTimeout); err != nil {
		return nil, err
	}
	if cfg.LeaseTTL, err = env.Duration("LEASE_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.StartDate, err = env.Date("START_DATE"); err != nil {
		return nil, err
	}
	if cfg.Backfill && cfg.StartDate.IsZero() {
		return nil, fmt.Errorf("BACKFILL requires START_DATE")
	}

	return cfg, nil
}

// loadTickers reads TICKERS_FILE when set and falls back to the comma
// separated TICKERS variable.
func loadTickers() (*apis.TickerList, error) {
	if path := os.Getenv("TICKERS_FILE"); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open tickers file: %w", err)
		}
		defer file.Close()

		return reader.NewYAMLConfigLoader(file).Load(true)
	}

	list := apis.NewTickerList(stringsutil.SplitAndTrim(os.Getenv("TICKERS"), ","))
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("TICKERS: %w", err)
	}
	return list, nil
}
