package models

import "time"

// Company is the canonical entity resolved from search results.
// Name is the natural key: resolution is exact-match, so casing variants
// create distinct rows on purpose (see DESIGN.md).
type Company struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`

	Industry    string `gorm:"type:varchar(255)" json:"industry"`
	Location    string `gorm:"type:varchar(255)" json:"location"`
	Description string `gorm:"type:text" json:"description"`

	// Score is the desirability score in [0,100], recomputed by the scoring
	// engine on every processed record touching this company.
	Score float64 `gorm:"not null;default:0;index" json:"score"`

	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	LastUpdated time.Time `gorm:"type:timestamptz" json:"last_updated"`
}

func (Company) TableName() string {
	return "companies"
}
