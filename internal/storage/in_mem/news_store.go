package in_mem

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	"github.com/google/uuid"
)

type newsKey struct {
	title    string
	hasTitle bool
	micros   int64
}

func keyOf(title *string, published time.Time) newsKey {
	k := newsKey{micros: domain.NormalizeTime(published).UnixMicro()}
	if title != nil {
		k.title = *title
		k.hasTitle = true
	}
	return k
}

type NewsStore struct {
	storageLock sync.RWMutex
	items       map[uuid.UUID]domain.NewsItem
	byKey       map[newsKey]uuid.UUID
	byURL       map[string]uuid.UUID
	byTicker    map[string][]uuid.UUID
}

var _ storage.NewsStore = (*NewsStore)(nil)

func NewNewsStore() *NewsStore {
	return &NewsStore{
		items:    make(map[uuid.UUID]domain.NewsItem),
		byKey:    make(map[newsKey]uuid.UUID),
		byURL:    make(map[string]uuid.UUID),
		byTicker: make(map[string][]uuid.UUID),
	}
}

func (s *NewsStore) Put(ctx context.Context, item domain.NewsItem) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := item.Validate(); err != nil {
		return false, err
	}

	item = item.Normalize()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = domain.NormalizeTime(time.Now())
	}

	k := keyOf(item.Title, item.PublishedDate)

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	if _, ok := s.byKey[k]; ok {
		return false, nil
	}
	if item.URL != nil {
		if _, ok := s.byURL[*item.URL]; ok {
			return false, nil
		}
		s.byURL[*item.URL] = item.ID
	}

	s.byKey[k] = item.ID
	s.items[item.ID] = item
	s.byTicker[item.Ticker] = append(s.byTicker[item.Ticker], item.ID)

	slog.Debug("news item stored in memory", "ticker", item.Ticker, "id", item.ID)
	return true, nil
}

func (s *NewsStore) ExistsFor(ctx context.Context, title *string, publishedDate time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	_, ok := s.byKey[keyOf(title, publishedDate)]
	return ok, nil
}

func (s *NewsStore) RangeByTicker(ctx context.Context, ticker string, from, to time.Time) iter.Seq2[domain.NewsItem, error] {
	return func(yield func(domain.NewsItem, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.NewsItem{}, err)
			return
		}

		for _, item := range s.snapshot(ticker, from, to) {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func (s *NewsStore) Count(ctx context.Context, ticker string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	if ticker == "" {
		return int64(len(s.items)), nil
	}
	return int64(len(s.byTicker[ticker])), nil
}

func (s *NewsStore) snapshot(ticker string, from, to time.Time) []domain.NewsItem {
	s.storageLock.RLock()
	ids := s.byTicker[ticker]
	out := make([]domain.NewsItem, 0, len(ids))
	for _, id := range ids {
		item := s.items[id]
		if item.PublishedDate.Before(from) {
			continue
		}
		if !to.IsZero() && !item.PublishedDate.Before(to) {
			continue
		}
		out = append(out, item)
	}
	s.storageLock.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedDate.Equal(out[j].PublishedDate) {
			return out[i].PublishedDate.Before(out[j].PublishedDate)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}
