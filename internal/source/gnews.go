package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
)

const (
	DefaultGNewsURL        = "https://gnews.io/api/v4/search"
	defaultMaxRequests     = 10
	defaultArticlesPerPage = 100
	gnewsTimestampLayout   = time.RFC3339
	maxErrorBodyBytes      = 512
)

type GNewsConfig struct {
	BaseURL            string
	APIKey             string
	Lang               string
	MaxRequests        int
	ArticlesPerRequest int
	Query              QueryFunc
	Retry              RetryConfig
}

// ErrTruncated is returned when the window holds more articles than
// MaxRequests pages can return.
var ErrTruncated = errors.New("results truncated")

// GNews is a client for the GNews search API. It pages through results
// until a short page or the reported total. Running out of MaxRequests before
// that fails the fetch with ErrTruncated, so a partial window is never
// returned as complete.
type GNews struct {
	cfg    GNewsConfig
	client *http.Client
}

var _ Fetcher = (*GNews)(nil)

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

func NewGNews(cfg GNewsConfig, client *http.Client) *GNews {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGNewsURL
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = defaultMaxRequests
	}
	if cfg.ArticlesPerRequest <= 0 {
		cfg.ArticlesPerRequest = defaultArticlesPerPage
	}
	if cfg.Query == nil {
		cfg.Query = DefaultQuery
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GNews{cfg: cfg, client: client}
}

func (g *GNews) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]domain.NewsItem, error) {
	var items []domain.NewsItem

	complete := false
	for page := 1; page <= g.cfg.MaxRequests && !complete; page++ {
		var resp gnewsResponse
		err := withRetry(ctx, g.cfg.Retry, "gnews", func() error {
			var err error
			resp, err = g.fetchPage(ctx, ticker, from, to, page)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%w: gnews %s page %d: %w", apperr.ErrFetchFailed, ticker, page, err)
		}

		for _, a := range resp.Articles {
			published := a.PublishedAt.UTC()
			if !inWindow(published, from, to) {
				continue
			}
			content := a.Content
			if content == "" {
				content = a.Description
			}
			items = append(items, domain.NewsItem{
				Ticker:        ticker,
				Title:         domain.StringPtr(a.Title),
				Content:       domain.StringPtr(content),
				URL:           domain.StringPtr(a.URL),
				PublishedDate: published,
			})
		}

		slog.Debug("gnews page fetched", "ticker", ticker, "page", page, "articles", len(resp.Articles), "total", resp.TotalArticles)
		complete = len(resp.Articles) < g.cfg.ArticlesPerRequest ||
			(resp.TotalArticles > 0 && page*g.cfg.ArticlesPerRequest >= resp.TotalArticles)
	}

	if !complete {
		return nil, fmt.Errorf("%w: gnews %s: %w after %d pages of %d", apperr.ErrFetchFailed, ticker, ErrTruncated, g.cfg.MaxRequests, g.cfg.ArticlesPerRequest)
	}
	return items, nil
}

func (g *GNews) fetchPage(ctx context.Context, ticker string, from, to time.Time, page int) (gnewsResponse, error) {
	u, err := url.Parse(g.cfg.BaseURL)
	if err != nil {
		return gnewsResponse{}, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("q", g.cfg.Query(ticker))
	q.Set("from", from.UTC().Format(gnewsTimestampLayout))
	q.Set("to", to.UTC().Format(gnewsTimestampLayout))
	q.Set("max", strconv.Itoa(g.cfg.ArticlesPerRequest))
	q.Set("page", strconv.Itoa(page))
	q.Set("sortby", "publishedAt")
	if g.cfg.Lang != "" {
		q.Set("lang", g.cfg.Lang)
	}
	q.Set("apikey", g.cfg.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return gnewsResponse{}, fmt.Errorf("build request: %w", err)
	}

	res, err := g.client.Do(req)
	if err != nil {
		return gnewsResponse{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return gnewsResponse{}, &statusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var out gnewsResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return gnewsResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
