package models

import "time"

// SystemSetting is a single named value that must survive restarts, such as
// the monitor's last-run bookkeeping.
type SystemSetting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
