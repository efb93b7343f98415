package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/mmcdole/gofeed"
)

// DefaultRSSTemplate is a Google News search feed. {query} is replaced by the
// URL-escaped ticker query.
const DefaultRSSTemplate = "https://news.google.com/rss/search?q={query}&hl=en-IN&gl=IN&ceid=IN:en"

type RSSConfig struct {
	URLTemplate string
	UserAgent   string
	Query       QueryFunc
	Retry       RetryConfig
}

// RSS reads a per-ticker search feed. Feeds have no server-side date filter,
// so items are filtered to the window locally.
type RSS struct {
	cfg    RSSConfig
	parser *gofeed.Parser
}

var _ Fetcher = (*RSS)(nil)

func NewRSS(cfg RSSConfig, client *http.Client) *RSS {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultRSSTemplate
	}
	if cfg.Query == nil {
		cfg.Query = DefaultQuery
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}

	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if cfg.UserAgent != "" {
		parser.UserAgent = cfg.UserAgent
	}

	return &RSS{cfg: cfg, parser: parser}
}

func (r *RSS) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]domain.NewsItem, error) {
	feedURL := strings.ReplaceAll(r.cfg.URLTemplate, "{query}", url.QueryEscape(r.cfg.Query(ticker)))

	var feed *gofeed.Feed
	err := withRetry(ctx, r.cfg.Retry, "rss", func() error {
		var err error
		feed, err = r.parser.ParseURLWithContext(feedURL, ctx)
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return &statusError{StatusCode: httpErr.StatusCode, Body: httpErr.Status}
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rss %s: %w", apperr.ErrFetchFailed, ticker, err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	skipped := 0
	for _, it := range feed.Items {
		published := it.PublishedParsed
		if published == nil {
			published = it.UpdatedParsed
		}
		if published == nil {
			skipped++
			continue
		}
		if !inWindow(published.UTC(), from, to) {
			continue
		}

		content := it.Content
		if content == "" {
			content = it.Description
		}
		items = append(items, domain.NewsItem{
			Ticker:        ticker,
			Title:         domain.StringPtr(strings.TrimSpace(it.Title)),
			Content:       domain.StringPtr(HTMLToText(content)),
			URL:           domain.StringPtr(it.Link),
			PublishedDate: published.UTC(),
		})
	}

	if skipped > 0 {
		slog.Warn("rss items without publish date skipped", "ticker", ticker, "count", skipped)
	}
	return items, nil
}
