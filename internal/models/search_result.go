package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SearchResult is the raw intake log: one row per discovered URL, append-only.
// Processed flips true exactly once when the resolver finishes the record;
// quarantined rows are kept out of the unprocessed queue for manual review.
type SearchResult struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Query string `gorm:"type:varchar(255);not null;index" json:"query"`

	Title   string `gorm:"type:varchar(512)" json:"title"`
	Content string `gorm:"type:text" json:"content"`
	URL     string `gorm:"type:varchar(512);not null;uniqueIndex" json:"url"`

	Relevance     decimal.Decimal `gorm:"type:numeric(10,6);not null" json:"relevance"`
	PublishedDate string          `gorm:"type:varchar(100)" json:"published_date"`

	RetrievedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"retrieved_at"`
	Processed   bool      `gorm:"not null;default:false;index" json:"processed"`
	Quarantined bool      `gorm:"not null;default:false;index" json:"quarantined"`
}

func (SearchResult) TableName() string {
	return "search_results"
}
