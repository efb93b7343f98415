package source

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_FetchWindow(t *testing.T) {
	s := NewStatic()
	s.Add(
		domain.NewsItem{Ticker: "ACME", Title: domain.StringPtr("in"), PublishedDate: from.Add(time.Hour)},
		domain.NewsItem{Ticker: "ACME", Title: domain.StringPtr("end"), PublishedDate: to},
		domain.NewsItem{Ticker: "OTHER", Title: domain.StringPtr("other"), PublishedDate: from.Add(time.Hour)},
	)

	items, err := s.Fetch(context.Background(), "ACME", from, to)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "in", *items[0].Title)
}
