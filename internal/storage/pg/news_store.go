package pg

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const newsTable = "company_news"

var newsColumns = []string{"id", "ticker", "ticker_id", "title", "content", "url", "published_date", "created_at"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type NewsStore struct {
	db *pgxpool.Pool
}

var _ storage.NewsStore = (*NewsStore)(nil)

func NewNewsStore(pool *ConnectionPool) *NewsStore {
	return &NewsStore{db: pool.conn}
}

func (s *NewsStore) Put(ctx context.Context, item domain.NewsItem) (bool, error) {
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

	cmd, args, err := psql.Insert(newsTable).
		Columns(newsColumns...).
		Values(item.ID, item.Ticker, nullable(item.TickerID), item.Title, item.Content, item.URL, item.PublishedDate, item.CreatedAt).
		Suffix("ON CONFLICT DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx, cmd, args...).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		slog.Debug("news item already stored", "ticker", item.Ticker, "title", item.TitleOrEmpty(), "published", item.PublishedDate)
		return false, nil
	case err != nil:
		return false, classify("insert news item", err)
	}

	return true, nil
}

func (s *NewsStore) ExistsFor(ctx context.Context, title *string, publishedDate time.Time) (bool, error) {
	title = domain.NewsItem{Title: title}.Normalize().Title

	query, args, err := psql.Select("1").
		From(newsTable).
		Where(sq.Expr("title IS NOT DISTINCT FROM ?", title)).
		Where(sq.Eq{"published_date": domain.NormalizeTime(publishedDate)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	switch err := s.db.QueryRow(ctx, query, args...).Scan(&one); {
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case err != nil:
		return false, classify("check news item", err)
	}
	return true, nil
}

func (s *NewsStore) RangeByTicker(ctx context.Context, ticker string, from, to time.Time) iter.Seq2[domain.NewsItem, error] {
	return func(yield func(domain.NewsItem, error) bool) {
		q := psql.Select(newsColumns...).
			From(newsTable).
			Where(sq.Eq{"ticker": ticker}).
			OrderBy("published_date ASC", "id ASC")
		if !from.IsZero() {
			q = q.Where(sq.GtOrEq{"published_date": domain.NormalizeTime(from)})
		}
		if !to.IsZero() {
			q = q.Where(sq.Lt{"published_date": domain.NormalizeTime(to)})
		}

		query, args, err := q.ToSql()
		if err != nil {
			yield(domain.NewsItem{}, fmt.Errorf("build range query: %w", err))
			return
		}

		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			yield(domain.NewsItem{}, classify("range news items", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scanNewsItem(rows)
			if err != nil {
				yield(domain.NewsItem{}, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.NewsItem{}, classify("range news items", err))
		}
	}
}

func (s *NewsStore) Count(ctx context.Context, ticker string) (int64, error) {
	q := psql.Select("COUNT(*)").From(newsTable)
	if ticker != "" {
		q = q.Where(sq.Eq{"ticker": ticker})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("count news items", err)
	}
	return n, nil
}

func scanNewsItem(rows pgx.Rows) (domain.NewsItem, error) {
	var item domain.NewsItem
	var tickerID *string
	if err := rows.Scan(
		&item.ID,
		&item.Ticker,
		&tickerID,
		&item.Title,
		&item.Content,
		&item.URL,
		&item.PublishedDate,
		&item.CreatedAt,
	); err != nil {
		return domain.NewsItem{}, fmt.Errorf("failed to scan news item: %w", err)
	}
	if tickerID != nil {
		item.TickerID = *tickerID
	}
	item.PublishedDate = item.PublishedDate.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}

func nullable(s string) *string {
	return domain.StringPtr(s)
}
