package apis

import "fmt"

const TickerListKind = "TickerList"

// TickerList is the ticker configuration file read at startup.
type TickerList struct {
	Kind     string       `json:"kind" example:"TickerList" yaml:"kind"`
	Version  string       `json:"version" example:"v1" yaml:"version"`
	Metadata Metadata     `json:"metadata" yaml:"metadata"`
	Tickers  []TickerSpec `json:"tickers" yaml:"tickers"`
}

type Metadata struct {
	Name        string `json:"name" example:"NSE large caps" yaml:"name"`
	Description string `json:"description" example:"Tickers ingested every cycle" yaml:"description"`
}

type TickerSpec struct {
	Symbol string `json:"symbol" example:"RELIANCE.NS" yaml:"symbol"`
	// ID is a secondary identifier such as an ISIN, stamped on stored items.
	ID string `json:"id,omitempty" example:"INE002A01018" yaml:"id"`
	// Query overrides the provider search query for this ticker.
	Query string `json:"query,omitempty" example:"Reliance Industries" yaml:"query"`
}

func (tl *TickerList) Validate() error {
	if tl.Kind != TickerListKind {
		return fmt.Errorf("kind must be %s", TickerListKind)
	}
	if tl.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(tl.Tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}

	seen := make(map[string]bool, len(tl.Tickers))
	for i, t := range tl.Tickers {
		if t.Symbol == "" {
			return fmt.Errorf("tickers[%d] must have symbol defined", i)
		}
		if seen[t.Symbol] {
			return fmt.Errorf("tickers[%d]: duplicate symbol %s", i, t.Symbol)
		}
		seen[t.Symbol] = true
	}
	return nil
}

func (tl *TickerList) Symbols() []string {
	out := make([]string, 0, len(tl.Tickers))
	for _, t := range tl.Tickers {
		out = append(out, t.Symbol)
	}
	return out
}

// IDs maps symbols to their secondary identifier, skipping empty ones.
func (tl *TickerList) IDs() map[string]string {
	out := make(map[string]string)
	for _, t := range tl.Tickers {
		if t.ID != "" {
			out[t.Symbol] = t.ID
		}
	}
	return out
}

// Queries maps symbols to their query override, skipping empty ones.
func (tl *TickerList) Queries() map[string]string {
	out := make(map[string]string)
	for _, t := range tl.Tickers {
		if t.Query != "" {
			out[t.Symbol] = t.Query
		}
	}
	return out
}

// NewTickerList builds a list from bare symbols, e.g. a TICKERS variable.
func NewTickerList(symbols []string) *TickerList {
	tl := &TickerList{Kind: TickerListKind, Version: "v1"}
	for _, s := range symbols {
		tl.Tickers = append(tl.Tickers, TickerSpec{Symbol: s})
	}
	return tl
}
