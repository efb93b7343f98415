package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/pg"
	pkgserver "github.com/DjordjeVuckovic/ticker-news/pkg/server"
)

// Backend groups the stores sharing one storage connection.
type Backend struct {
	News   storage.NewsStore
	Ledger storage.RunLedger
	Health storage.HealthChecker

	close func()
}

func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// New opens the configured backend. For PostgreSQL the schema is migrated
// first when cfg.Migrate is set.
func New(ctx context.Context, cfg StorageConfig) (*Backend, error) {
	switch cfg.Type {
	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("PostgreSQL storage requires a pool config")
		}

		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}

		if cfg.Migrate {
			if err := pg.Migrate(ctx, pool, cfg.LedgerMode); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to migrate PostgreSQL schema: %w", err)
			}
		}

		slog.Info("PostgreSQL storage ready", "ledgerMode", cfg.LedgerMode)
		return &Backend{
			News:   pg.NewNewsStore(pool),
			Ledger: pg.NewLedger(pool, cfg.LedgerMode),
			Health: pg.NewHealthChecker(pool),
			close:  pool.Close,
		}, nil

	case storage.InMem:
		slog.Warn("Using in-memory storage, nothing survives a restart", "ledgerMode", cfg.LedgerMode)
		return &Backend{
			News:   in_mem.NewNewsStore(),
			Ledger: in_mem.NewLedger(cfg.LedgerMode),
			Health: pkgserver.NewOkHealthChecker(),
		}, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}
