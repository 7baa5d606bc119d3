package models

import "time"

// Hiring signal types produced by the analysis capability.
const (
	SignalExpansion      = "expansion"
	SignalFunding        = "funding"
	SignalBreach         = "breach"
	SignalComplianceNews = "compliance_news"
	SignalRegulatory     = "regulatory"
	SignalProductLaunch  = "product_launch"
)

// KnownSignalType reports whether t is one of the signal type constants.
func KnownSignalType(t string) bool {
	switch t {
	case SignalExpansion, SignalFunding, SignalBreach,
		SignalComplianceNews, SignalRegulatory, SignalProductLaunch:
		return true
	}
	return false
}

// HiringSignal is an inferred event suggesting near-term hiring need.
// Dedup key is (company_id, signal_type, source_url).
type HiringSignal struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uint64  `gorm:"not null;index" json:"company_id"`
	Company   Company `json:"company,omitempty"`

	SignalType string  `gorm:"type:varchar(100);not null;index" json:"signal_type"`
	Confidence float64 `gorm:"not null;default:0" json:"confidence"`

	Description string `gorm:"type:text" json:"description"`
	SourceURL   string `gorm:"type:varchar(512)" json:"source_url"`

	DetectedDate time.Time `gorm:"type:timestamptz;index" json:"detected_date"`
}

func (HiringSignal) TableName() string {
	return "hiring_signals"
}
