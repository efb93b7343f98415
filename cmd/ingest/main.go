// Package main Ticker News
// @title Ticker News API
// @version 1.0
// @description Incremental, restart-safe news ingestion per stock ticker
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/DjordjeVuckovic/ticker-news/docs"
	"github.com/DjordjeVuckovic/ticker-news/internal/api/router"
	"github.com/DjordjeVuckovic/ticker-news/internal/api/server"
	"github.com/DjordjeVuckovic/ticker-news/internal/ingest"
	"github.com/DjordjeVuckovic/ticker-news/internal/lease"
	"github.com/DjordjeVuckovic/ticker-news/internal/scheduler"
	"github.com/DjordjeVuckovic/ticker-news/internal/source"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/factory"
	pkgserver "github.com/DjordjeVuckovic/ticker-news/pkg/server"
	"github.com/go-redis/redis/v8"
)

const stopTimeout = 30 * time.Second

func main() {
	once := flag.Bool("once", false, "run a single ingestion cycle and exit")
	flag.Parse()

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	slog.SetLogLoggerLevel(cfg.LogLevel)

	if *once {
		os.Exit(runOnce(cfg))
	}

	if err := serve(cfg); err != nil {
		slog.Error("Ingestion service stopped with error", "error", err)
		os.Exit(1)
	}
}

// runOnce runs one cycle over every ticker and returns the exit code.
func runOnce(cfg *IngestConfig) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := factory.New(ctx, cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to open storage", "error", err)
		return 1
	}
	defer backend.Close()

	coord, _, closeLocker, err := newCoordinator(cfg, backend)
	if err != nil {
		slog.Error("Failed to create coordinator", "error", err)
		return 1
	}
	defer closeLocker()

	report := newScheduler(cfg, coord).RunCycle(ctx)
	for ticker, err := range report.Failed {
		slog.Error("Ticker failed", "ticker", ticker, "error", err)
	}
	if len(report.Failed) > 0 {
		return 1
	}
	return 0
}

func serve(cfg *IngestConfig) error {
	bootCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	backend, err := factory.New(bootCtx, cfg.StorageConfig)
	cancel()
	if err != nil {
		return err
	}
	defer backend.Close()

	coord, health, closeLocker, err := newCoordinator(cfg, backend)
	if err != nil {
		return err
	}
	defer closeLocker()

	s := server.New(cfg.Server, health).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	router.NewTickerRouter(s.Echo, coord, backend.News, cfg.Tickers.Symbols()).Bind()

	sched := newScheduler(cfg, coord)
	if err := sched.Start(s.Context()); err != nil {
		return err
	}

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if stopErr := sched.Stop(stopCtx); stopErr != nil {
		slog.Error("Scheduler did not stop in time", "error", stopErr)
	}

	return err
}

// newCoordinator also returns the health checker covering every backing
// service and a func releasing the lease client.
func newCoordinator(cfg *IngestConfig, backend *factory.Backend) (*ingest.Coordinator, pkgserver.HealthChecker, func(), error) {
	fetcher, err := source.New(*cfg.Source, source.QueryOverrides(cfg.Tickers.Queries()))
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []ingest.CoordinatorOption{
		ingest.WithLookback(cfg.Lookback),
		ingest.WithOverlap(cfg.Overlap),
		ingest.WithFetchTimeout(cfg.FetchTimeout),
		ingest.WithTickerIDs(cfg.Tickers.IDs()),
	}
	if !cfg.StartDate.IsZero() {
		opts = append(opts, ingest.WithStartDate(cfg.StartDate))
	}

	var health pkgserver.HealthChecker = backend.Health
	closeLocker := func() {}
	if cfg.RedisAddr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
		})
		var leaseOpts []lease.RedisOption
		if cfg.LeaseTTL > 0 {
			leaseOpts = append(leaseOpts, lease.WithTTL(cfg.LeaseTTL))
		}
		locker := lease.NewRedis(client, leaseOpts...)
		opts = append(opts, ingest.WithLocker(locker))
		health = pkgserver.NewCompositeHealthChecker(backend.Health, locker)
		closeLocker = func() {
			if err := client.Close(); err != nil {
				slog.Warn("Failed to close redis client", "error", err)
			}
		}
		slog.Info("Using redis ticker leases", "addr", cfg.RedisAddr)
	}

	return ingest.NewCoordinator(backend.News, backend.Ledger, fetcher, opts...), health, closeLocker, nil
}

func newScheduler(cfg *IngestConfig, coord *ingest.Coordinator) *scheduler.Scheduler {
	opts := []scheduler.Option{
		scheduler.WithInterval(cfg.Interval),
		scheduler.WithWorkers(cfg.Workers),
	}
	if cfg.Backfill {
		opts = append(opts, scheduler.WithBackfill())
	}
	return scheduler.New(coord, cfg.Tickers.Symbols(), opts...)
}
