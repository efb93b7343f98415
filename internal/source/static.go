package source

import (
	"context"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
)

// Static serves a fixed set of items per ticker. Used for local runs without
// a provider and in tests.
type Static struct {
	mu    sync.RWMutex
	items map[string][]domain.NewsItem
}

var _ Fetcher = (*Static)(nil)

func NewStatic() *Static {
	return &Static{items: make(map[string][]domain.NewsItem)}
}

func (s *Static) Add(items ...domain.NewsItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		s.items[it.Ticker] = append(s.items[it.Ticker], it)
	}
}

func (s *Static) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]domain.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.NewsItem
	for _, it := range s.items[ticker] {
		if inWindow(it.PublishedDate, from, to) {
			out = append(out, it)
		}
	}
	return out, nil
}
