package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerTable = "pipeline_log"

// Ledger is the pipeline_log table. Each record is a single INSERT, so a
// reader never observes a partially written entry.
type Ledger struct {
	db   *pgxpool.Pool
	mode domain.LedgerMode
}

var _ storage.RunLedger = (*Ledger)(nil)

// NewLedger expects Migrate to have run with the same mode.
func NewLedger(pool *ConnectionPool, mode domain.LedgerMode) *Ledger {
	return &Ledger{db: pool.conn, mode: mode}
}

func (l *Ledger) Mode() domain.LedgerMode {
	return l.mode
}

func (l *Ledger) LastWatermark(ctx context.Context, ticker string) (domain.Watermark, bool, error) {
	if err := l.require(domain.LedgerWatermark); err != nil {
		return domain.Watermark{}, false, err
	}

	query, args, err := psql.Select("MIN(oldest_published_date)", "MAX(latest_published_date)").
		From(ledgerTable).
		Where(sq.Eq{"ticker": ticker}).
		ToSql()
	if err != nil {
		return domain.Watermark{}, false, fmt.Errorf("build watermark query: %w", err)
	}

	var oldest, latest pgtype.Timestamptz
	if err := l.db.QueryRow(ctx, query, args...).Scan(&oldest, &latest); err != nil {
		return domain.Watermark{}, false, classify("read watermark", err)
	}
	if !oldest.Valid || !latest.Valid {
		return domain.Watermark{}, false, nil
	}

	return domain.Watermark{
		Ticker: ticker,
		Oldest: oldest.Time.UTC(),
		Latest: latest.Time.UTC(),
	}, true, nil
}

func (l *Ledger) LastRun(ctx context.Context, ticker string) (time.Time, bool, error) {
	if err := l.require(domain.LedgerLastRun); err != nil {
		return time.Time{}, false, err
	}

	query, args, err := psql.Select("MAX(last_run)").
		From(ledgerTable).
		Where(sq.Eq{"ticker": ticker}).
		ToSql()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build last run query: %w", err)
	}

	var last pgtype.Timestamptz
	if err := l.db.QueryRow(ctx, query, args...).Scan(&last); err != nil {
		return time.Time{}, false, classify("read last run", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time.UTC(), true, nil
}

func (l *Ledger) RecordWatermark(ctx context.Context, ticker string, oldest, latest time.Time) error {
	if err := l.require(domain.LedgerWatermark); err != nil {
		return err
	}

	oldest, latest = domain.NormalizeTime(oldest), domain.NormalizeTime(latest)
	cmd, args, err := psql.Insert(ledgerTable).
		Columns("ticker", "oldest_published_date", "latest_published_date").
		Values(ticker, oldest, latest).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build watermark insert: %w", err)
	}

	tag, err := l.db.Exec(ctx, cmd, args...)
	if err != nil {
		return classify("record watermark", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record watermark %s [%s, %s]: %w", ticker, oldest, latest, apperr.ErrDuplicateRun)
	}
	return nil
}

func (l *Ledger) RecordRun(ctx context.Context, ticker string, timestamp time.Time) error {
	if err := l.require(domain.LedgerLastRun); err != nil {
		return err
	}

	timestamp = domain.NormalizeTime(timestamp)
	cmd, args, err := psql.Insert(ledgerTable).
		Columns("ticker", "last_run").
		Values(ticker, timestamp).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	tag, err := l.db.Exec(ctx, cmd, args...)
	if err != nil {
		return classify("record run", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record run %s at %s: %w", ticker, timestamp, apperr.ErrDuplicateRun)
	}
	return nil
}

// Entries counts the ledger rows logged for a ticker.
func (l *Ledger) Entries(ctx context.Context, ticker string) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From(ledgerTable).
		Where(sq.Eq{"ticker": ticker}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build ledger count query: %w", err)
	}

	var n int64
	if err := l.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("count ledger entries", err)
	}
	return n, nil
}

func (l *Ledger) require(mode domain.LedgerMode) error {
	if l.mode != mode {
		return fmt.Errorf("%w: ledger is %q, operation needs %q", apperr.ErrLedgerMode, l.mode, mode)
	}
	return nil
}
