package pg

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrationLockKey serializes concurrent Migrate calls across processes.
const migrationLockKey = 7_310_214

var ledgerColumns = map[domain.LedgerMode][]string{
	domain.LedgerWatermark: {"oldest_published_date", "latest_published_date"},
	domain.LedgerLastRun:   {"last_run"},
}

// Migrate creates the news table and the pipeline_log table in the shape of
// mode. It never drops anything and is safe to run on every start. It fails
// with apperr.ErrLedgerMode when pipeline_log already exists in the other shape.
func Migrate(ctx context.Context, pool *ConnectionPool, mode domain.LedgerMode) error {
	if !mode.Valid() {
		return apperr.NewValidation(fmt.Sprintf("unknown ledger mode %q", mode))
	}

	tx, err := pool.conn.Begin(ctx)
	if err != nil {
		return classify("begin migration", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
		return classify("acquire migration lock", err)
	}

	if err := execFile(ctx, tx, "migrations/0001_company_news.sql"); err != nil {
		return err
	}

	existing, err := tableColumns(ctx, tx, "pipeline_log")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		for _, col := range ledgerColumns[mode] {
			if !existing[col] {
				return fmt.Errorf("%w: pipeline_log exists without column %q required by %q ledger",
					apperr.ErrLedgerMode, col, mode)
			}
		}
		slog.Info("pipeline_log already present", "mode", mode)
	}

	if err := execFile(ctx, tx, fmt.Sprintf("migrations/0002_pipeline_log_%s.sql", mode)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit migration", err)
	}

	slog.Info("Migration completed", "ledgerMode", mode)
	return nil
}

func execFile(ctx context.Context, tx pgx.Tx, name string) error {
	script, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, string(script)); err != nil {
		return classify("apply "+name, err)
	}
	slog.Debug("Applied migration", "file", name)
	return nil
}

func tableColumns(ctx context.Context, tx pgx.Tx, table string) (map[string]bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, classify("inspect "+table, err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, classify("inspect "+table, err)
	}

	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols, nil
}
