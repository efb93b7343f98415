package domain

import "time"

type LedgerMode string

const (
	// LedgerWatermark logs the inclusive published-date range covered by each run.
	LedgerWatermark LedgerMode = "watermark"
	// LedgerLastRun logs only the timestamp of each successful run.
	LedgerLastRun LedgerMode = "last_run"
)

func (m LedgerMode) Valid() bool {
	return m == LedgerWatermark || m == LedgerLastRun
}

// Watermark is the published-date range known to be ingested for a ticker.
type Watermark struct {
	Ticker string    `json:"ticker"`
	Oldest time.Time `json:"oldest"`
	Latest time.Time `json:"latest"`
}

// Window is a half-open fetch interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Empty() bool {
	return !w.Start.Before(w.End)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
