package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/ingest"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInterval = 15 * time.Minute
	DefaultWorkers  = 4
)

var ErrAlreadyStarted = errors.New("scheduler already started")

// Runner is the part of ingest.Coordinator the scheduler drives.
type Runner interface {
	RunOnce(ctx context.Context, ticker string) (ingest.RunResult, error)
	Backfill(ctx context.Context, ticker string) (ingest.RunResult, error)
}

// CycleReport summarizes one pass over all tickers. A failed ticker never
// aborts the others; it is retried on the next cycle.
type CycleReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Succeeded []string
	Skipped   []string
	Failed    map[string]error
	Results   map[string]ingest.RunResult
}

// Scheduler runs an ingestion cycle for every ticker on a fixed interval.
type Scheduler struct {
	runner   Runner
	tickers  []string
	interval time.Duration
	workers  int
	backfill bool

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
	cycles   int
	onReport func(CycleReport)
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithBackfill backfills every ticker once, before its first cycle.
func WithBackfill() Option {
	return func(s *Scheduler) {
		s.backfill = true
	}
}

// WithReportHook is called after every cycle started by Start.
func WithReportHook(fn func(CycleReport)) Option {
	return func(s *Scheduler) {
		s.onReport = fn
	}
}

func New(runner Runner, tickers []string, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		tickers:  tickers,
		interval: DefaultInterval,
		workers:  DefaultWorkers,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RunCycle ingests every ticker once with at most the configured number of
// tickers in flight.
func (s *Scheduler) RunCycle(ctx context.Context) CycleReport {
	s.mu.Lock()
	backfill := s.backfill && s.cycles == 0
	s.cycles++
	s.mu.Unlock()

	report := CycleReport{
		StartedAt: time.Now(),
		Failed:    make(map[string]error),
		Results:   make(map[string]ingest.RunResult, len(s.tickers)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, ticker := range s.tickers {
		g.Go(func() error {
			if backfill {
				if _, err := s.runner.Backfill(gctx, ticker); err != nil {
					slog.Warn("Backfill failed", "ticker", ticker, "error", err)
				}
			}

			res, err := s.runner.RunOnce(gctx, ticker)

			mu.Lock()
			defer mu.Unlock()
			report.Results[ticker] = res
			switch {
			case err != nil:
				report.Failed[ticker] = err
			case res.Skipped:
				report.Skipped = append(report.Skipped, ticker)
			default:
				report.Succeeded = append(report.Succeeded, ticker)
			}
			// ticker failures are reported, never propagated to the group
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(report.Succeeded)
	sort.Strings(report.Skipped)
	report.Duration = time.Since(report.StartedAt)

	for ticker, err := range report.Failed {
		slog.Warn("Ticker will be retried next cycle",
			"ticker", ticker,
			"retryable", apperr.Retryable(err),
			"error", err,
		)
	}

	slog.Info("🏁 Ingestion cycle finished",
		"tickers", len(s.tickers),
		"succeeded", len(report.Succeeded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", report.Duration,
	)

	return report
}

// Start runs a cycle immediately and then on every interval tick until ctx
// is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-stop:
			cancel()
		case <-runCtx.Done():
		}
	}()

	go func() {
		defer close(done)
		defer cancel()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.cycle(runCtx)
		for {
			select {
			case <-ticker.C:
				s.cycle(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval, "workers", s.workers, "tickers", len(s.tickers))
	return nil
}

// Stop cancels the running cycle and waits for it to return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		slog.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report := s.RunCycle(ctx)
	if s.onReport != nil {
		s.onReport(report)
	}
}
