package database

import (
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.NotificationPreferences{},
		&models.Alert{},
		&models.Station{},
		&models.DeviceToken{},
		&models.CacheEntry{},
		&models.SystemSetting{},
	)
}
