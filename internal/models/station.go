package models

import "time"

// Station is a river gauge location known to the directory. The primary key
// is the upstream gauge identifier, not a generated UUID, so forecast and
// threshold lookups join directly on it.
type Station struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	RiverName string  `gorm:"size:255" json:"river_name"`
	State     string  `gorm:"size:8" json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
