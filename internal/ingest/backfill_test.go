package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfill_CoversRangeBeforeOldest(t *testing.T) {
	ctx := context.Background()
	start := t0.Add(-30 * 24 * time.Hour)
	f := newFixture(domain.LedgerWatermark, WithStartDate(start))
	require.NoError(t, f.ledger.RecordWatermark(ctx, "ACME", t0.Add(-7*24*time.Hour), t0))

	f.fetcher.set(
		news("ACME", "old", t0.Add(-20*24*time.Hour)),
		news("ACME", "already covered", t0.Add(-24*time.Hour)),
	)

	res, err := f.coord.Backfill(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Rejected)
	assert.True(t, res.Committed)

	wm, found := f.watermark(t, "ACME")
	require.True(t, found)
	assert.Equal(t, start, wm.Oldest)
	assert.Equal(t, t0, wm.Latest)

	again, err := f.coord.Backfill(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, again.Skipped)
}

func TestBackfill_Preconditions(t *testing.T) {
	ctx := context.Background()

	noStart := newFixture(domain.LedgerWatermark)
	_, err := noStart.coord.Backfill(ctx, "ACME")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	runs := newFixture(domain.LedgerLastRun, WithStartDate(t0.Add(-time.Hour)))
	_, err = runs.coord.Backfill(ctx, "ACME")
	assert.ErrorIs(t, err, apperr.ErrLedgerMode)

	fresh := newFixture(domain.LedgerWatermark, WithStartDate(t0.Add(-time.Hour)))
	res, err := fresh.coord.Backfill(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 0, fresh.fetcher.calls())
}
