package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/lease"
	"github.com/DjordjeVuckovic/ticker-news/internal/source"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
)

const (
	DefaultLookback     = 7 * 24 * time.Hour
	DefaultOverlap      = time.Hour
	DefaultFetchTimeout = 30 * time.Second
)

// Config defines how fetch windows are computed.
type Config struct {
	// Lookback is the first-run window length when StartDate is zero.
	Lookback time.Duration
	// StartDate, when set, is the first-run start and the backfill floor.
	StartDate time.Time
	// Overlap is re-fetched before the last committed boundary to catch
	// late-arriving items.
	Overlap      time.Duration
	FetchTimeout time.Duration
}

// RunResult describes one ingestion cycle for a ticker.
type RunResult struct {
	Ticker     string        `json:"ticker"`
	Window     domain.Window `json:"window"`
	Fetched    int           `json:"fetched"`
	Inserted   int           `json:"inserted"`
	Duplicates int           `json:"duplicates"`
	Rejected   int           `json:"rejected"`
	Skipped    bool          `json:"skipped"`
	Committed  bool          `json:"committed"`
	// DuplicateRun is set when the ledger already held the identical entry.
	DuplicateRun bool          `json:"duplicateRun"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// Coordinator runs restart-safe ingestion cycles. Progress is committed to
// the ledger only after every fetched item was stored, so a failed run is
// retried in full and relies on NewsStore dedup to skip stored items.
type Coordinator struct {
	news      storage.NewsStore
	ledger    storage.RunLedger
	fetcher   source.Fetcher
	locker    lease.Locker
	now       func() time.Time
	cfg       Config
	tickerIDs map[string]string

	mu      sync.RWMutex
	last    map[string]RunResult
	running map[string]bool
}

type CoordinatorOption func(*Coordinator)

func WithLocker(l lease.Locker) CoordinatorOption {
	return func(c *Coordinator) {
		c.locker = l
	}
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithLookback(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.cfg.Lookback = d
	}
}

func WithStartDate(t time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.cfg.StartDate = t
	}
}

func WithOverlap(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.cfg.Overlap = d
	}
}

func WithFetchTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.cfg.FetchTimeout = d
	}
}

// WithTickerIDs sets the secondary identifier stamped on items that lack one.
func WithTickerIDs(ids map[string]string) CoordinatorOption {
	return func(c *Coordinator) {
		for k, v := range ids {
			c.tickerIDs[k] = v
		}
	}
}

func NewCoordinator(news storage.NewsStore, ledger storage.RunLedger, fetcher source.Fetcher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		news:    news,
		ledger:  ledger,
		fetcher: fetcher,
		locker:  lease.NewLocal(),
		now:     time.Now,
		cfg: Config{
			Lookback:     DefaultLookback,
			Overlap:      DefaultOverlap,
			FetchTimeout: DefaultFetchTimeout,
		},
		tickerIDs: make(map[string]string),
		last:      make(map[string]RunResult),
		running:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RunOnce ingests news for ticker from its last committed boundary (minus the
// overlap) up to now. An empty window is a successful no-op.
func (c *Coordinator) RunOnce(ctx context.Context, ticker string) (RunResult, error) {
	if ticker == "" {
		return RunResult{}, apperr.NewValidation("ticker is required")
	}

	held, release, err := c.locker.Acquire(ctx, ticker)
	if err != nil {
		return RunResult{Ticker: ticker}, fmt.Errorf("acquire lease for %s: %w", ticker, err)
	}
	defer release()

	c.setRunning(ticker, true)
	defer c.setRunning(ticker, false)

	res := RunResult{Ticker: ticker, StartedAt: c.now()}
	res, err = c.runLocked(held, res)
	c.finish(&res, err)
	return res, err
}

func (c *Coordinator) runLocked(ctx context.Context, res RunResult) (RunResult, error) {
	boundary, found, err := c.progress(ctx, res.Ticker)
	if err != nil {
		return res, err
	}

	res.Window = c.nextWindow(boundary, found, res.StartedAt)
	if res.Window.Empty() || (found && res.Window.End.Before(boundary)) {
		res.Skipped = true
		slog.Warn("Skipping ingestion, empty fetch window",
			"ticker", res.Ticker,
			"start", res.Window.Start,
			"end", res.Window.End,
			"boundary", boundary,
			"error", apperr.ErrInvalidWindow,
		)
		return res, nil
	}

	slog.Info("🛫 Starting ingestion run",
		"ticker", res.Ticker,
		"mode", c.ledger.Mode(),
		"firstRun", !found,
		"start", res.Window.Start,
		"end", res.Window.End,
	)

	return c.ingest(ctx, res, func(ctx context.Context) error {
		if c.ledger.Mode() == domain.LedgerLastRun {
			return c.ledger.RecordRun(ctx, res.Ticker, res.Window.End)
		}
		return c.ledger.RecordWatermark(ctx, res.Ticker, res.Window.Start, res.Window.End)
	})
}

// Backfill fetches the range between the configured start date and the
// oldest covered date of a ticker and records it as a watermark entry. It
// only applies to the watermark ledger.
func (c *Coordinator) Backfill(ctx context.Context, ticker string) (RunResult, error) {
	if ticker == "" {
		return RunResult{}, apperr.NewValidation("ticker is required")
	}
	if c.ledger.Mode() != domain.LedgerWatermark {
		return RunResult{Ticker: ticker}, fmt.Errorf("backfill %s: %w: requires %q ledger", ticker, apperr.ErrLedgerMode, domain.LedgerWatermark)
	}
	if c.cfg.StartDate.IsZero() {
		return RunResult{Ticker: ticker}, apperr.NewValidation("backfill requires a start date")
	}

	held, release, err := c.locker.Acquire(ctx, ticker)
	if err != nil {
		return RunResult{Ticker: ticker}, fmt.Errorf("acquire lease for %s: %w", ticker, err)
	}
	defer release()

	c.setRunning(ticker, true)
	defer c.setRunning(ticker, false)

	res := RunResult{Ticker: ticker, StartedAt: c.now()}
	res, err = c.backfillLocked(held, res)
	c.finish(&res, err)
	return res, err
}

func (c *Coordinator) backfillLocked(ctx context.Context, res RunResult) (RunResult, error) {
	wm, found, err := c.ledger.LastWatermark(ctx, res.Ticker)
	if err != nil {
		return res, fmt.Errorf("read watermark for %s: %w", res.Ticker, err)
	}
	if !found {
		res.Skipped = true
		slog.Info("Nothing to backfill, ticker has no committed run", "ticker", res.Ticker)
		return res, nil
	}

	res.Window = domain.Window{Start: domain.NormalizeTime(c.cfg.StartDate), End: wm.Oldest}
	if res.Window.Empty() {
		res.Skipped = true
		slog.Info("Backfill not needed", "ticker", res.Ticker, "startDate", c.cfg.StartDate, "oldest", wm.Oldest)
		return res, nil
	}

	slog.Info("🛫 Starting backfill run", "ticker", res.Ticker, "start", res.Window.Start, "end", res.Window.End)

	return c.ingest(ctx, res, func(ctx context.Context) error {
		return c.ledger.RecordWatermark(ctx, res.Ticker, res.Window.Start, res.Window.End)
	})
}

// ingest fetches res.Window, stores every accepted item and then commits.
func (c *Coordinator) ingest(ctx context.Context, res RunResult, commit func(context.Context) error) (RunResult, error) {
	items, err := c.fetch(ctx, res.Ticker, res.Window)
	if err != nil {
		return res, err
	}
	res.Fetched = len(items)

	for _, item := range items {
		item, ok := c.admit(res.Ticker, res.Window, item)
		if !ok {
			res.Rejected++
			continue
		}

		inserted, err := c.news.Put(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("run for %s interrupted while storing: %w", res.Ticker, context.Cause(ctx))
			}
			return res, fmt.Errorf("store news for %s: %w", res.Ticker, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Duplicates++
		}
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("run for %s cancelled before commit: %w", res.Ticker, context.Cause(ctx))
	}

	if err := commit(ctx); err != nil {
		if errors.Is(err, apperr.ErrDuplicateRun) {
			res.DuplicateRun = true
			slog.Info("Ledger entry already recorded", "ticker", res.Ticker, "error", err)
			return res, nil
		}
		return res, fmt.Errorf("commit progress for %s: %w", res.Ticker, err)
	}
	res.Committed = true

	return res, nil
}

func (c *Coordinator) fetch(ctx context.Context, ticker string, w domain.Window) ([]domain.NewsItem, error) {
	fetchCtx := ctx
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}

	items, err := c.fetcher.Fetch(fetchCtx, ticker, w.Start, w.End)
	if ctx.Err() != nil {
		return nil, fmt.Errorf("fetch for %s interrupted: %w", ticker, context.Cause(ctx))
	}
	if err != nil {
		if errors.Is(err, apperr.ErrFetchFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrFetchFailed, ticker, err)
	}
	if err := fetchCtx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperr.ErrFetchFailed, ticker, err)
	}
	return items, nil
}

// admit stamps ticker identity on item and rejects items that are invalid or
// outside the fetch window.
func (c *Coordinator) admit(ticker string, w domain.Window, item domain.NewsItem) (domain.NewsItem, bool) {
	if item.Ticker == "" {
		item.Ticker = ticker
	}
	if item.TickerID == "" {
		item.TickerID = c.tickerIDs[ticker]
	}
	item = item.Normalize()

	if item.Ticker != ticker || item.Validate() != nil || !w.Contains(item.PublishedDate) {
		slog.Debug("Rejected fetched item",
			"ticker", ticker,
			"itemTicker", item.Ticker,
			"title", item.TitleOrEmpty(),
			"published", item.PublishedDate,
		)
		return item, false
	}
	return item, true
}

// progress returns the last committed boundary for ticker.
func (c *Coordinator) progress(ctx context.Context, ticker string) (time.Time, bool, error) {
	switch c.ledger.Mode() {
	case domain.LedgerLastRun:
		last, found, err := c.ledger.LastRun(ctx, ticker)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("read last run for %s: %w", ticker, err)
		}
		return last, found, nil
	default:
		wm, found, err := c.ledger.LastWatermark(ctx, ticker)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("read watermark for %s: %w", ticker, err)
		}
		return wm.Latest, found, nil
	}
}

func (c *Coordinator) nextWindow(boundary time.Time, found bool, now time.Time) domain.Window {
	end := domain.NormalizeTime(now)

	var start time.Time
	switch {
	case found:
		start = boundary.Add(-c.cfg.Overlap)
	case !c.cfg.StartDate.IsZero():
		start = c.cfg.StartDate
	default:
		start = end.Add(-c.cfg.Lookback)
	}

	return domain.Window{Start: domain.NormalizeTime(start), End: end}
}

func (c *Coordinator) finish(res *RunResult, err error) {
	res.Duration = c.now().Sub(res.StartedAt)
	if err != nil {
		res.Error = err.Error()
		slog.Error("Ingestion run failed",
			"ticker", res.Ticker,
			"fetched", res.Fetched,
			"inserted", res.Inserted,
			"error", err,
		)
	} else if !res.Skipped {
		slog.Info("Ingestion run completed",
			"ticker", res.Ticker,
			"fetched", res.Fetched,
			"inserted", res.Inserted,
			"duplicates", res.Duplicates,
			"rejected", res.Rejected,
			"committed", res.Committed,
			"duration", res.Duration,
		)
	}

	c.mu.Lock()
	c.last[res.Ticker] = *res
	c.mu.Unlock()
}

func (c *Coordinator) setRunning(ticker string, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if running {
		c.running[ticker] = true
	} else {
		delete(c.running, ticker)
	}
}
