package models

import "time"

// CacheEntry is one row of the database-backed cache store. A zero ExpiresAt
// marks an entry that never expires.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry is past its expiry at the given instant.
func (e CacheEntry) Expired(at time.Time) bool {
	return !e.ExpiresAt.IsZero() && at.After(e.ExpiresAt)
}
