package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTickers = `
kind: TickerList
version: v1
metadata:
  name: "NSE large caps"
tickers:
  - symbol: RELIANCE.NS
    id: INE002A01018
  - symbol: TCS.NS
    query: "Tata Consultancy Services"
`

func TestYAMLConfigLoader_String_Load(t *testing.T) {
	loader := NewYAMLConfigLoader(strings.NewReader(validTickers))

	cfg, err := loader.Load(true)

	require.NoError(t, err)
	assert.Equal(t, "TickerList", cfg.Kind)
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, "NSE large caps", cfg.Metadata.Name)
	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS"}, cfg.Symbols())
	assert.Equal(t, map[string]string{"RELIANCE.NS": "INE002A01018"}, cfg.IDs())
	assert.Equal(t, map[string]string{"TCS.NS": "Tata Consultancy Services"}, cfg.Queries())
}

func TestYAMLConfigLoader_File_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validTickers), 0644))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	cfg, err := NewYAMLConfigLoader(file).Load(true)
	require.NoError(t, err)
	assert.Len(t, cfg.Tickers, 2)
}

func TestYAMLConfigLoader_Load_ShouldFail(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown field",
			content: `
kind: TickerList
version: v1
symbols: [RELIANCE.NS]
`,
		},
		{
			name: "wrong kind",
			content: `
kind: DataMapping
version: v1
tickers:
  - symbol: RELIANCE.NS
`,
		},
		{
			name: "duplicate symbol",
			content: `
kind: TickerList
version: v1
tickers:
  - symbol: RELIANCE.NS
  - symbol: RELIANCE.NS
`,
		},
		{
			name: "empty symbol",
			content: `
kind: TickerList
version: v1
tickers:
  - id: INE002A01018
`,
		},
		{
			name:    "no tickers",
			content: "kind: TickerList\nversion: v1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLConfigLoader(strings.NewReader(tt.content)).Load(true)
			assert.Error(t, err)
		})
	}
}
