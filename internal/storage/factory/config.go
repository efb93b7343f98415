package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/pg"
)

type StorageConfig struct {
	storage.Type
	LedgerMode domain.LedgerMode
	// Migrate applies the embedded schema when the backend is opened.
	Migrate bool
	Pg      *pg.PoolConfig
}

func LoadEnv() (*StorageConfig, error) {
	storageType := (storage.Type)(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Error("STORAGE_TYPE environment variable is not set")
		return nil, fmt.Errorf("STORAGE_TYPE environment variable is not set")
	}
	if storageType != storage.PG && storageType != storage.InMem {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.PG, storage.InMem})
	}

	mode := domain.LedgerMode(os.Getenv("LEDGER_MODE"))
	if mode == "" {
		mode = domain.LedgerWatermark
	}
	if !mode.Valid() {
		slog.Error("Invalid LEDGER_MODE environment variable value", "value", mode)
		return nil, fmt.Errorf("invalid LEDGER_MODE value: %s, expected one of %v",
			mode,
			[]domain.LedgerMode{domain.LedgerWatermark, domain.LedgerLastRun})
	}

	var pgCfg *pg.PoolConfig
	if storageType == storage.PG {
		pgCfg = &pg.PoolConfig{
			ConnStr: os.Getenv("PG_CONNECTION_STRING"),
		}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
		if v := os.Getenv("PG_MAX_CONNS"); v != "" {
			n, err := strconv.ParseInt(v, 10, 32)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid PG_MAX_CONNS value: %s", v)
			}
			pgCfg.MaxConns = int32(n)
		}
	}

	return &StorageConfig{
		Type:       storageType,
		LedgerMode: mode,
		Migrate:    os.Getenv("PG_MIGRATE") != "false",
		Pg:         pgCfg,
	}, nil
}
