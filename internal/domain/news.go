package domain

import (
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/apperr"
	"github.com/google/uuid"
)

// StoragePrecision is the finest timestamp resolution the stores keep.
const StoragePrecision = time.Microsecond

// NewsItem is a single published news entry for a ticker.
// Identity is the pair (Title, PublishedDate).
type NewsItem struct {
	ID            uuid.UUID `json:"id"`
	Ticker        string    `json:"ticker"`
	TickerID      string    `json:"tickerId,omitempty"`
	Title         *string   `json:"title,omitempty"`
	Content       *string   `json:"content,omitempty"`
	URL           *string   `json:"url,omitempty"`
	PublishedDate time.Time `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Normalize brings timestamps to UTC at storage precision so that equal
// instants compare equal regardless of the backend.
func (n NewsItem) Normalize() NewsItem {
	n.Title = nonEmpty(n.Title)
	n.Content = nonEmpty(n.Content)
	n.URL = nonEmpty(n.URL)
	n.PublishedDate = NormalizeTime(n.PublishedDate)
	if !n.CreatedAt.IsZero() {
		n.CreatedAt = NormalizeTime(n.CreatedAt)
	}
	return n
}

func (n NewsItem) Validate() error {
	if n.Ticker == "" {
		return apperr.NewValidation("news item ticker is required")
	}
	if n.PublishedDate.IsZero() {
		return apperr.NewValidation("news item published date is required")
	}
	return nil
}

// TitleOrEmpty returns the title text, or "" when absent.
func (n NewsItem) TitleOrEmpty() string {
	if n.Title == nil {
		return ""
	}
	return *n.Title
}

func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(StoragePrecision)
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
