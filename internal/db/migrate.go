package db

import (
	"roleradar/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.SearchResult{},
		&models.Company{},
		&models.Opportunity{},
		&models.HiringSignal{},
	)
}
