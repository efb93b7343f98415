package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/lease"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
)

var t0 = time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeFetcher returns its items unfiltered, like a provider that ignores
// the requested window.
type fakeFetcher struct {
	mu      sync.Mutex
	items   []domain.NewsItem
	err     error
	windows []domain.Window
	// block, when set, holds Fetch until it is closed or ctx is done
	block   chan struct{}
	entered chan struct{}
	// done, when set, runs before Fetch returns its items
	done func()
}

func (f *fakeFetcher) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]domain.NewsItem, error) {
	f.mu.Lock()
	f.windows = append(f.windows, domain.Window{Start: from, End: to})
	items := append([]domain.NewsItem(nil), f.items...)
	err := f.err
	block := f.block
	entered := f.entered
	done := f.done
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if done != nil {
		done()
	}

	out := items[:0]
	for _, it := range items {
		if it.Ticker == "" || it.Ticker == ticker {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeFetcher) set(items ...domain.NewsItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
}

func (f *fakeFetcher) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

func (f *fakeFetcher) lastWindow() domain.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows[len(f.windows)-1]
}

// flakyStore fails every Put after the first failAfter calls.
type flakyStore struct {
	storage.NewsStore

	mu        sync.Mutex
	failAfter int
	puts      int
}

func (f *flakyStore) Put(ctx context.Context, item domain.NewsItem) (bool, error) {
	f.mu.Lock()
	f.puts++
	fail := f.failAfter >= 0 && f.puts > f.failAfter
	f.mu.Unlock()

	if fail {
		return false, fmt.Errorf("%w: connection reset by peer", apperr.ErrStorageUnavailable)
	}
	return f.NewsStore.Put(ctx, item)
}

func (f *flakyStore) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = -1
}

// losableLocker grants every lease and lets a test take it away while held,
// as a shared lease store does when a lease expires.
type losableLocker struct {
	mu   sync.Mutex
	lost context.CancelCauseFunc
}

func (l *losableLocker) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	held, cancel := context.WithCancelCause(ctx)
	l.mu.Lock()
	l.lost = cancel
	l.mu.Unlock()
	return held, func() { cancel(nil) }, nil
}

func (l *losableLocker) lose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lost(lease.ErrLost)
}

func news(ticker, title string, published time.Time) domain.NewsItem {
	return domain.NewsItem{
		Ticker:        ticker,
		Title:         domain.StringPtr(title),
		Content:       domain.StringPtr("content of " + title),
		PublishedDate: published,
	}
}
