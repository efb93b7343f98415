package pg

import (
	"context"
	"os"
	"testing"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	pkgtesting "github.com/DjordjeVuckovic/ticker-news/pkg/testing"
)

var (
	testCtx      context.Context
	testPool     *ConnectionPool
	testRunsPool *ConnectionPool
	testConnStr  string
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	testCtx = context.Background()

	pg, err := pkgtesting.NewPGContainer(testCtx, pkgtesting.PGConfig{})
	if err != nil {
		panic(err)
	}
	defer pg.Terminate()
	testConnStr = pg.ConnString

	testPool, err = NewConnectionPool(testCtx, PoolConfig{ConnStr: pg.ConnString})
	if err != nil {
		panic(err)
	}
	defer testPool.Close()

	if err := Migrate(testCtx, testPool, domain.LedgerWatermark); err != nil {
		panic(err)
	}

	// the last-run ledger lives in its own schema so both shapes can be tested
	if _, err := testPool.GetConn().Exec(testCtx, "CREATE SCHEMA IF NOT EXISTS last_run"); err != nil {
		panic(err)
	}
	testRunsPool, err = NewConnectionPool(testCtx, PoolConfig{ConnStr: pg.ConnString + "&search_path=last_run"})
	if err != nil {
		panic(err)
	}
	defer testRunsPool.Close()

	if err := Migrate(testCtx, testRunsPool, domain.LedgerLastRun); err != nil {
		panic(err)
	}

	return m.Run()
}

func truncateTables(t *testing.T) {
	t.Helper()
	for _, pool := range []*ConnectionPool{testPool, testRunsPool} {
		_, err := pool.GetConn().Exec(testCtx, "TRUNCATE TABLE company_news, pipeline_log")
		if err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
	}
}
