package in_mem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
)

type Ledger struct {
	mode domain.LedgerMode

	mu         sync.RWMutex
	watermarks map[string][]domain.Watermark
	runs       map[string][]time.Time
}

var _ storage.RunLedger = (*Ledger)(nil)

func NewLedger(mode domain.LedgerMode) *Ledger {
	return &Ledger{
		mode:       mode,
		watermarks: make(map[string][]domain.Watermark),
		runs:       make(map[string][]time.Time),
	}
}

func (l *Ledger) Mode() domain.LedgerMode {
	return l.mode
}

func (l *Ledger) LastWatermark(ctx context.Context, ticker string) (domain.Watermark, bool, error) {
	if err := l.require(ctx, domain.LedgerWatermark); err != nil {
		return domain.Watermark{}, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.watermarks[ticker]
	if len(entries) == 0 {
		return domain.Watermark{}, false, nil
	}

	union := entries[0]
	for _, e := range entries[1:] {
		if e.Oldest.Before(union.Oldest) {
			union.Oldest = e.Oldest
		}
		if e.Latest.After(union.Latest) {
			union.Latest = e.Latest
		}
	}
	return union, true, nil
}

func (l *Ledger) LastRun(ctx context.Context, ticker string) (time.Time, bool, error) {
	if err := l.require(ctx, domain.LedgerLastRun); err != nil {
		return time.Time{}, false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var last time.Time
	found := false
	for _, ts := range l.runs[ticker] {
		if !found || ts.After(last) {
			last = ts
			found = true
		}
	}
	return last, found, nil
}

func (l *Ledger) RecordWatermark(ctx context.Context, ticker string, oldest, latest time.Time) error {
	if err := l.require(ctx, domain.LedgerWatermark); err != nil {
		return err
	}

	wm := domain.Watermark{
		Ticker: ticker,
		Oldest: domain.NormalizeTime(oldest),
		Latest: domain.NormalizeTime(latest),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.watermarks[ticker] {
		if e.Oldest.Equal(wm.Oldest) && e.Latest.Equal(wm.Latest) {
			return fmt.Errorf("record watermark %s [%s, %s]: %w", ticker, wm.Oldest, wm.Latest, apperr.ErrDuplicateRun)
		}
	}
	l.watermarks[ticker] = append(l.watermarks[ticker], wm)
	return nil
}

func (l *Ledger) RecordRun(ctx context.Context, ticker string, timestamp time.Time) error {
	if err := l.require(ctx, domain.LedgerLastRun); err != nil {
		return err
	}

	ts := domain.NormalizeTime(timestamp)

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.runs[ticker] {
		if e.Equal(ts) {
			return fmt.Errorf("record run %s at %s: %w", ticker, ts, apperr.ErrDuplicateRun)
		}
	}
	l.runs[ticker] = append(l.runs[ticker], ts)
	return nil
}

// Entries returns the number of ledger entries logged for a ticker.
func (l *Ledger) Entries(ticker string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.mode == domain.LedgerWatermark {
		return len(l.watermarks[ticker])
	}
	return len(l.runs[ticker])
}

func (l *Ledger) require(ctx context.Context, mode domain.LedgerMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.mode != mode {
		return fmt.Errorf("%w: ledger is %q, operation needs %q", apperr.ErrLedgerMode, l.mode, mode)
	}
	return nil
}
