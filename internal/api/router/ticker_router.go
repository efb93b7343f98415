package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/dto"
	"github.com/DjordjeVuckovic/ticker-news/internal/ingest"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	"github.com/DjordjeVuckovic/ticker-news/pkg/pagination"
	"github.com/labstack/echo/v4"
)

// Ingestor is the part of ingest.Coordinator exposed over HTTP.
type Ingestor interface {
	RunOnce(ctx context.Context, ticker string) (ingest.RunResult, error)
	Backfill(ctx context.Context, ticker string) (ingest.RunResult, error)
	Status(ctx context.Context, ticker string) (ingest.Status, error)
}

type TickerRouter struct {
	e        *echo.Echo
	ingestor Ingestor
	news     storage.NewsStore
	tickers  map[string]struct{}
}

func NewTickerRouter(e *echo.Echo, ingestor Ingestor, news storage.NewsStore, tickers []string) *TickerRouter {
	known := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		known[t] = struct{}{}
	}

	return &TickerRouter{
		e:        e,
		ingestor: ingestor,
		news:     news,
		tickers:  known,
	}
}

func (r *TickerRouter) Bind() {
	r.e.GET("/tickers", r.listHandler)
	r.e.GET("/status/:ticker", r.statusHandler)
	r.e.GET("/tickers/:ticker/news", r.newsHandler)
	r.e.POST("/tickers/:ticker/run", r.runHandler)
}

// listHandler godoc
// @Summary List tickers
// @Description Lists the tickers this instance ingests
// @Tags tickers
// @Produce json
// @Success 200 {object} dto.TickerList
// @Router /tickers [get]
func (r *TickerRouter) listHandler(c echo.Context) error {
	list := make([]string, 0, len(r.tickers))
	for t := range r.tickers {
		list = append(list, t)
	}
	sort.Strings(list)

	return c.JSON(http.StatusOK, dto.TickerList{Tickers: list})
}

// statusHandler godoc
// @Summary Ingestion status
// @Description Returns the committed progress and the last run of a ticker
// @Tags tickers
// @Produce json
// @Param ticker path string true "Ticker symbol"
// @Success 200 {object} ingest.Status
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /status/{ticker} [get]
func (r *TickerRouter) statusHandler(c echo.Context) error {
	ticker, err := r.ticker(c)
	if err != nil {
		return err
	}

	st, err := r.ingestor.Status(c.Request().Context(), ticker)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, st)
}

// newsHandler godoc
// @Summary Stored news
// @Description Lists stored news of a ticker ordered by published date
// @Tags tickers
// @Produce json
// @Param ticker path string true "Ticker symbol"
// @Param from query string false "Inclusive lower bound, RFC3339 or YYYY-MM-DD"
// @Param to query string false "Exclusive upper bound, RFC3339 or YYYY-MM-DD"
// @Param cursor query string false "Cursor from a previous page"
// @Param size query int false "Page size" default(100)
// @Success 200 {object} pagination.CursorResult[dto.NewsItem]
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tickers/{ticker}/news [get]
func (r *TickerRouter) newsHandler(c echo.Context) error {
	ticker, err := r.ticker(c)
	if err != nil {
		return err
	}

	from, err := parseTime(c.QueryParam("from"))
	if err != nil {
		return apperr.NewValidationWrap("invalid from", err)
	}
	to, err := parseTime(c.QueryParam("to"))
	if err != nil {
		return apperr.NewValidationWrap("invalid to", err)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return apperr.NewValidation("from must be before to")
	}

	page, err := pagination.ParseCursorRequest(c.QueryParam("cursor"), c.QueryParam("size"))
	if err != nil {
		return apperr.NewValidationWrap("invalid page", err)
	}

	var cursor *dto.Cursor
	if page.Cursor != nil {
		cursor, err = dto.DecodeCursor(*page.Cursor)
		if err != nil {
			return apperr.NewValidationWrap("invalid cursor", err)
		}
		if cursor.PublishedAt.After(from) {
			from = cursor.PublishedAt
		}
	}

	items := make([]dto.NewsItem, 0, page.Size+1)
	for item, err := range r.news.RangeByTicker(c.Request().Context(), ticker, from, to) {
		if err != nil {
			return err
		}
		if cursor != nil && !cursor.After(item.PublishedDate, item.ID) {
			continue
		}
		items = append(items, dto.FromNewsItem(item))
		if len(items) > page.Size {
			break
		}
	}

	res, err := pagination.NewCursorResult(items, page.Size, func(it dto.NewsItem) (string, error) {
		return dto.EncodeCursor(it.PublishedDate, it.ID)
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

// runHandler godoc
// @Summary Trigger ingestion
// @Description Runs one ingestion cycle for the ticker, or a backfill when backfill=true
// @Tags tickers
// @Produce json
// @Param ticker path string true "Ticker symbol"
// @Param backfill query bool false "Backfill before the oldest covered date"
// @Success 200 {object} ingest.RunResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /tickers/{ticker}/run [post]
func (r *TickerRouter) runHandler(c echo.Context) error {
	ticker, err := r.ticker(c)
	if err != nil {
		return err
	}

	run := r.ingestor.RunOnce
	if c.QueryParam("backfill") == "true" {
		run = r.ingestor.Backfill
	}

	res, err := run(c.Request().Context(), ticker)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (r *TickerRouter) ticker(c echo.Context) (string, error) {
	ticker := c.Param("ticker")
	if ticker == "" {
		return "", apperr.NewValidation("ticker is required")
	}
	if _, ok := r.tickers[ticker]; !ok {
		return "", fmt.Errorf("%w: ticker %s is not configured", apperr.ErrNotFound, ticker)
	}
	return ticker, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
