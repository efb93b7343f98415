// Package source holds clients for external news providers.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
)

// Fetcher returns the news published for ticker in [from, to).
// Retrying transient failures is the fetcher's job; a returned error means
// the whole window failed.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, from, to time.Time) ([]domain.NewsItem, error)
}

type Type string

const (
	GNewsType  Type = "gnews"
	RSSType    Type = "rss"
	StaticType Type = "static"
)

// QueryFunc turns a ticker into a provider search query.
type QueryFunc func(ticker string) string

// DefaultQuery drops an exchange suffix such as ".NS" and quotes the symbol.
func DefaultQuery(ticker string) string {
	symbol := ticker
	if i := strings.LastIndex(symbol, "."); i > 0 {
		symbol = symbol[:i]
	}
	return `"` + symbol + `"`
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
