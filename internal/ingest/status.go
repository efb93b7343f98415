package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
)

// Status is the read-only progress view of a ticker.
type Status struct {
	Ticker     string            `json:"ticker"`
	Mode       domain.LedgerMode `json:"mode"`
	Found      bool              `json:"found"`
	Oldest     *time.Time        `json:"oldest,omitempty"`
	Latest     *time.Time        `json:"latest,omitempty"`
	LastRun    *time.Time        `json:"lastRun,omitempty"`
	Running    bool              `json:"running"`
	StoredNews int64             `json:"storedNews"`
	LastResult *RunResult        `json:"lastResult,omitempty"`
}

// Status never takes the ticker lease, so it can be served while a run is in
// flight.
func (c *Coordinator) Status(ctx context.Context, ticker string) (Status, error) {
	if ticker == "" {
		return Status{}, apperr.NewValidation("ticker is required")
	}

	st := Status{Ticker: ticker, Mode: c.ledger.Mode()}

	switch st.Mode {
	case domain.LedgerLastRun:
		last, found, err := c.ledger.LastRun(ctx, ticker)
		if err != nil {
			return Status{}, fmt.Errorf("status %s: %w", ticker, err)
		}
		if found {
			st.Found = true
			st.LastRun = &last
		}
	default:
		wm, found, err := c.ledger.LastWatermark(ctx, ticker)
		if err != nil {
			return Status{}, fmt.Errorf("status %s: %w", ticker, err)
		}
		if found {
			st.Found = true
			st.Oldest = &wm.Oldest
			st.Latest = &wm.Latest
		}
	}

	n, err := c.news.Count(ctx, ticker)
	if err != nil {
		return Status{}, fmt.Errorf("status %s: %w", ticker, err)
	}
	st.StoredNews = n

	c.mu.RLock()
	st.Running = c.running[ticker]
	if res, ok := c.last[ticker]; ok {
		st.LastResult = &res
	}
	c.mu.RUnlock()

	return st, nil
}
