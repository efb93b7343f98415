package dto

import (
	"time"

	"github.com/DjordjeVuckovic/ticker-news/internal/domain"
	"github.com/google/uuid"
)

type NewsItem struct {
	ID            uuid.UUID `json:"id"`
	Ticker        string    `json:"ticker"`
	TickerID      string    `json:"tickerId,omitempty"`
	Title         *string   `json:"title"`
	Content       *string   `json:"content,omitempty"`
	URL           *string   `json:"url,omitempty" swaggertype:"string" format:"string"`
	PublishedDate time.Time `json:"publishedDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromNewsItem(item domain.NewsItem) NewsItem {
	return NewsItem{
		ID:            item.ID,
		Ticker:        item.Ticker,
		TickerID:      item.TickerID,
		Title:         item.Title,
		Content:       item.Content,
		URL:           item.URL,
		PublishedDate: item.PublishedDate,
		CreatedAt:     item.CreatedAt,
	}
}

// TickerList is returned by the ticker listing endpoint.
type TickerList struct {
	Tickers []string `json:"tickers"`
}
