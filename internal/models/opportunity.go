package models

import (
	"time"

	"gorm.io/datatypes"
)

// Opportunity is a job opening tied to a company. At most one active row may
// exist per (company_id, title); repeat sightings are silently skipped.
type Opportunity struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uint64  `gorm:"not null;index" json:"company_id"`
	Company   Company `json:"company,omitempty"`

	Title    string `gorm:"type:varchar(255);not null;index" json:"title"`
	RoleType string `gorm:"type:varchar(100)" json:"role_type"`

	Description string `gorm:"type:text" json:"description"`
	URL         string `gorm:"type:varchar(512)" json:"url"`
	Location    string `gorm:"type:varchar(255)" json:"location"`

	Keywords datatypes.JSON `gorm:"type:jsonb" json:"keywords,omitempty"`

	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	DiscoveredDate time.Time `gorm:"type:timestamptz;index" json:"discovered_date"`
	LastSeen       time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"last_seen"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}
