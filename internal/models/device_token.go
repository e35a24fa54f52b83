package models

import "time"

// DeviceToken is a push delivery address registered by a user's device.
type DeviceToken struct {
	BaseModel

	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Token      string    `gorm:"size:512;not null;uniqueIndex" json:"token"`
	Platform   string    `gorm:"size:16;not null" json:"platform"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
