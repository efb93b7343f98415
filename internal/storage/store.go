package storage

import (
	"context"
	"iter"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
)

// NewsStore keeps at most one copy of every (title, published date) pair.
type NewsStore interface {
	// Put stores the item. A duplicate is reported as inserted=false, not as an error.
	Put(ctx context.Context, item domain.NewsItem) (bool, error)
	ExistsFor(ctx context.Context, title *string, publishedDate time.Time) (bool, error)
	// RangeByTicker yields items with from <= published_date < to ordered by
	// published date. A zero to means no upper bound. Each range over the
	// returned sequence re-reads the store.
	RangeByTicker(ctx context.Context, ticker string, from, to time.Time) iter.Seq2[domain.NewsItem, error]
	Count(ctx context.Context, ticker string) (int64, error)
}

// RunLedger is the append-only progress log. Only the operation pair that
// matches Mode is usable; the other pair returns apperr.ErrLedgerMode.
type RunLedger interface {
	Mode() domain.LedgerMode
	LastWatermark(ctx context.Context, ticker string) (domain.Watermark, bool, error)
	LastRun(ctx context.Context, ticker string) (time.Time, bool, error)
	RecordWatermark(ctx context.Context, ticker string, oldest, latest time.Time) error
	RecordRun(ctx context.Context, ticker string, timestamp time.Time) error
}

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}
