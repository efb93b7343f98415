package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/DjordjeVuckovic/ticker-news/internal/lease"
	"github.com/DjordjeVuckovic/ticker-news/internal/storage/in_mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	news    *in_mem.NewsStore
	ledger  *in_mem.Ledger
	fetcher *fakeFetcher
	clock   *fakeClock
	coord   *Coordinator
}

func newFixture(mode domain.LedgerMode, opts ...CoordinatorOption) *fixture {
	f := &fixture{
		news:    in_mem.NewNewsStore(),
		ledger:  in_mem.NewLedger(mode),
		fetcher: &fakeFetcher{},
		clock:   newClock(t0),
	}
	opts = append([]CoordinatorOption{WithClock(f.clock.Now)}, opts...)
	f.coord = NewCoordinator(f.news, f.ledger, f.fetcher, opts...)
	return f
}

func (f *fixture) stored(t *testing.T, ticker string) int64 {
	t.Helper()
	n, err := f.news.Count(context.Background(), ticker)
	require.NoError(t, err)
	return n
}

func (f *fixture) watermark(t *testing.T, ticker string) (domain.Watermark, bool) {
	t.Helper()
	wm, found, err := f.ledger.LastWatermark(context.Background(), ticker)
	require.NoError(t, err)
	return wm, found
}

func TestRunOnce_FirstRunUsesLookback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithLookback(7*24*time.Hour))
	f.fetcher.set(
		news("ACME", "one", t0.Add(-6*24*time.Hour)),
		news("ACME", "two", t0.Add(-3*24*time.Hour)),
		news("ACME", "three", t0.Add(-time.Hour)),
	)

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 3, res.Inserted)
	assert.True(t, res.Committed)
	assert.EqualValues(t, 3, f.stored(t, "ACME"))
	assert.Equal(t, 1, f.ledger.Entries("ACME"))

	wm, found := f.watermark(t, "ACME")
	require.True(t, found)
	assert.Equal(t, t0.Add(-7*24*time.Hour), wm.Oldest)
	assert.Equal(t, t0, wm.Latest)
	assert.Equal(t, domain.Window{Start: t0.Add(-7 * 24 * time.Hour), End: t0}, f.fetcher.lastWindow())
}

func TestRunOnce_SecondRunStoresOnlyNewItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithOverlap(2*time.Hour))
	first := []domain.NewsItem{
		news("ACME", "one", t0.Add(-3*time.Hour)),
		news("ACME", "two", t0.Add(-90*time.Minute)),
		news("ACME", "three", t0.Add(-time.Hour)),
	}
	f.fetcher.set(first...)
	_, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	f.fetcher.set(append(first, news("ACME", "four", t0.Add(30*time.Second)))...)

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	assert.EqualValues(t, 4, f.stored(t, "ACME"))
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Duplicates, "items inside the overlap are deduplicated")
	assert.Equal(t, 1, res.Rejected, "items before the overlap are not re-stored")
	assert.Equal(t, 2, f.ledger.Entries("ACME"))
	assert.Equal(t, domain.Window{Start: t0.Add(-2 * time.Hour), End: t0.Add(time.Minute)}, f.fetcher.lastWindow())
}

func TestRunOnce_OverlapItemIsDeduplicated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithOverlap(time.Hour))
	late := news("ACME", "late arrival", t0.Add(-10*time.Minute))

	f.fetcher.set(late)
	_, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.EqualValues(t, 1, f.stored(t, "ACME"))
}

func TestRunOnce_FetchFailureDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark)
	f.fetcher.set(news("ACME", "one", t0.Add(-time.Hour)))
	_, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	before, _ := f.watermark(t, "ACME")

	f.clock.Advance(time.Hour)
	f.fetcher.fail(errors.New("upstream 503"))

	res, err := f.coord.RunOnce(ctx, "ACME")
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.False(t, res.Committed)
	assert.NotEmpty(t, res.Error)

	after, _ := f.watermark(t, "ACME")
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.ledger.Entries("ACME"))
}

func TestRunOnce_StorageFailureDoesNotCommitAndRetryIsSafe(t *testing.T) {
	ctx := context.Background()
	mem := in_mem.NewNewsStore()
	flaky := &flakyStore{NewsStore: mem, failAfter: 1}
	ledger := in_mem.NewLedger(domain.LedgerWatermark)
	fetcher := &fakeFetcher{}
	clock := newClock(t0)
	coord := NewCoordinator(flaky, ledger, fetcher, WithClock(clock.Now))

	fetcher.set(
		news("ACME", "one", t0.Add(-3*time.Hour)),
		news("ACME", "two", t0.Add(-2*time.Hour)),
		news("ACME", "three", t0.Add(-time.Hour)),
	)

	_, err := coord.RunOnce(ctx, "ACME")
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Equal(t, 0, ledger.Entries("ACME"))

	n, err := mem.Count(ctx, "ACME")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "items stored before the failure stay")

	flaky.heal()
	clock.Advance(time.Minute)

	res, err := coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 1, ledger.Entries("ACME"))
	assert.Equal(t, t0.Add(-DefaultLookback).Add(time.Minute), fetcher.lastWindow().Start, "retry refetches the whole window")
}

func TestRunOnce_EmptyWindowIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithOverlap(time.Minute))

	// a boundary ahead of the local clock, e.g. after clock skew
	require.NoError(t, f.ledger.RecordWatermark(ctx, "ACME", t0.Add(-time.Hour), t0.Add(time.Hour)))
	f.fetcher.set(news("ACME", "x", t0.Add(-time.Minute)))

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.False(t, res.Committed)
	assert.Equal(t, 0, f.fetcher.calls())
	assert.EqualValues(t, 0, f.stored(t, "ACME"))
	assert.Equal(t, 1, f.ledger.Entries("ACME"))
}

func TestRunOnce_BoundaryAheadWithinOverlapIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithOverlap(3*time.Hour))
	require.NoError(t, f.ledger.RecordWatermark(ctx, "ACME", t0.Add(-time.Hour), t0.Add(time.Hour)))

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	assert.True(t, res.Skipped, "committing would move the watermark backwards")
	assert.Equal(t, 0, f.fetcher.calls())
	assert.Equal(t, 1, f.ledger.Entries("ACME"))
}

func TestRunOnce_EmptyFetchStillAdvances(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark)

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 0, res.Fetched)

	wm, found := f.watermark(t, "ACME")
	require.True(t, found)
	assert.Equal(t, t0, wm.Latest)
}

func TestRunOnce_LedgerIsMonotonic(t *testing.T) {
	for _, mode := range []domain.LedgerMode{domain.LedgerWatermark, domain.LedgerLastRun} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(mode)

			var prev time.Time
			for i := 0; i < 5; i++ {
				f.fetcher.set(news("ACME", "run", f.clock.Now().Add(-time.Minute)))
				_, err := f.coord.RunOnce(ctx, "ACME")
				require.NoError(t, err)

				st, err := f.coord.Status(ctx, "ACME")
				require.NoError(t, err)
				require.True(t, st.Found)

				var boundary time.Time
				if mode == domain.LedgerWatermark {
					boundary = *st.Latest
				} else {
					boundary = *st.LastRun
				}
				assert.False(t, boundary.Before(prev))
				prev = boundary

				f.clock.Advance(10 * time.Minute)
			}
			assert.Equal(t, 5, f.ledger.Entries("ACME"))
		})
	}
}

func TestRunOnce_LastRunMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerLastRun, WithOverlap(15*time.Minute))

	_, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)

	last, found, err := f.ledger.LastRun(ctx, "ACME")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, t0, last)

	f.clock.Advance(time.Hour)
	_, err = f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, domain.Window{Start: t0.Add(-15 * time.Minute), End: t0.Add(time.Hour)}, f.fetcher.lastWindow())
}

func TestRunOnce_DuplicateRunIsBenign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerLastRun)
	require.NoError(t, f.ledger.RecordRun(ctx, "ACME", t0))

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.True(t, res.DuplicateRun)
	assert.False(t, res.Committed)
	assert.Equal(t, 1, f.ledger.Entries("ACME"))
}

func TestRunOnce_StartDateOverridesLookback(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newFixture(domain.LedgerWatermark, WithStartDate(start))

	_, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, start, f.fetcher.lastWindow().Start)
}

func TestRunOnce_RejectsForeignAndInvalidItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithTickerIDs(map[string]string{"ACME": "INE000A01010"}))
	f.fetcher.set(
		domain.NewsItem{Title: domain.StringPtr("no ticker"), PublishedDate: t0.Add(-time.Hour)},
		domain.NewsItem{Ticker: "ACME", Title: domain.StringPtr("no date")},
		news("ACME", "future", t0.Add(time.Hour)),
		news("ACME", "ok", t0.Add(-2*time.Hour)),
	)

	res, err := f.coord.RunOnce(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Rejected)

	for it, err := range f.news.RangeByTicker(ctx, "ACME", time.Time{}, time.Time{}) {
		require.NoError(t, err)
		assert.Equal(t, "INE000A01010", it.TickerID)
	}
}

func TestRunOnce_FetchTimeoutAborts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(domain.LedgerWatermark, WithFetchTimeout(20*time.Millisecond))
	f.fetcher.block = make(chan struct{})
	defer close(f.fetcher.block)

	_, err := f.coord.RunOnce(ctx, "ACME")
	assert.ErrorIs(t, err, apperr.ErrFetchFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.ledger.Entries("ACME"))
}

func TestRunOnce_CancellationReleasesLeaseWithoutCommit(t *testing.T) {
	f := newFixture(domain.LedgerWatermark)
	f.fetcher.block = make(chan struct{})
	f.fetcher.entered = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.coord.RunOnce(ctx, "ACME")
		done <- err
	}()

	<-f.fetcher.entered
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.ledger.Entries("ACME"))

	close(f.fetcher.block)
	f.fetcher.block = nil
	f.fetcher.entered = nil

	res, err := f.coord.RunOnce(context.Background(), "ACME")
	require.NoError(t, err, "lease must be free after cancellation")
	assert.True(t, res.Committed)
}

func TestRunOnce_SerializesPerTicker(t *testing.T) {
	f := newFixture(domain.LedgerWatermark)
	f.fetcher.block = make(chan struct{})
	f.fetcher.entered = make(chan struct{}, 4)

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for _, ticker := range []string{"ACME", "ACME", "GLOBEX"} {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			_, err := f.coord.RunOnce(context.Background(), ticker)
			errs <- err
		}(ticker)
	}

	// one ACME run and the GLOBEX run enter fetch, the second ACME run waits
	<-f.fetcher.entered
	<-f.fetcher.entered
	select {
	case <-f.fetcher.entered:
		t.Fatal("two runs for the same ticker were in flight")
	case <-time.After(50 * time.Millisecond):
	}

	st, err := f.coord.Status(context.Background(), "ACME")
	require.NoError(t, err)
	assert.True(t, st.Running)

	close(f.fetcher.block)
	<-f.fetcher.entered
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestRunOnce_RequiresTicker(t *testing.T) {
	f := newFixture(domain.LedgerWatermark)

	_, err := f.coord.RunOnce(context.Background(), "")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRunOnce_LostLeaseDuringFetchDoesNotCommit(t *testing.T) {
	locker := &losableLocker{}
	f := newFixture(domain.LedgerWatermark, WithLocker(locker))
	f.fetcher.set(news("ACME", "one", t0.Add(-time.Hour)))
	f.fetcher.block = make(chan struct{})
	f.fetcher.entered = make(chan struct{}, 1)
	defer close(f.fetcher.block)

	done := make(chan error, 1)
	go func() {
		_, err := f.coord.RunOnce(context.Background(), "ACME")
		done <- err
	}()

	<-f.fetcher.entered
	locker.lose()

	err := <-done
	assert.ErrorIs(t, err, lease.ErrLost)
	assert.Equal(t, 0, f.ledger.Entries("ACME"))
	_, found := f.watermark(t, "ACME")
	assert.False(t, found)
}

func TestRunOnce_LostLeaseAfterFetchDoesNotCommit(t *testing.T) {
	locker := &losableLocker{}
	f := newFixture(domain.LedgerWatermark, WithLocker(locker))
	f.fetcher.set(news("ACME", "one", t0.Add(-time.Hour)))
	f.fetcher.done = locker.lose

	res, err := f.coord.RunOnce(context.Background(), "ACME")
	assert.ErrorIs(t, err, lease.ErrLost)
	assert.False(t, res.Committed)
	assert.Equal(t, 0, f.ledger.Entries("ACME"))
}
