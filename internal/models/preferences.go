package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationPreferences stores a user's alerting settings. Rows are
// written by the settings surface and read by the monitoring pipeline.
type NotificationPreferences struct {
	BaseModel

	UserID              string                      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Enabled             bool                        `gorm:"default:false;index" json:"enabled"`
	MonitoredStationIDs datatypes.JSONSlice[string] `json:"monitored_station_ids"`

	IncludeShortRange  bool `gorm:"default:true" json:"include_short_range"`
	IncludeMediumRange bool `gorm:"default:true" json:"include_medium_range"`

	QuietHoursEnabled bool `gorm:"default:false" json:"quiet_hours_enabled"`
	QuietStartHour    int  `json:"quiet_start_hour"`
	QuietStartMinute  int  `json:"quiet_start_minute"`
	QuietEndHour      int  `json:"quiet_end_hour"`
	QuietEndMinute    int  `json:"quiet_end_minute"`

	// Timezone is an IANA zone name the quiet-hours window is evaluated in.
	// Empty means the server's local zone.
	Timezone string `gorm:"size:64" json:"timezone"`
}

// Ranges returns the forecast horizons the user wants evaluated.
func (p *NotificationPreferences) Ranges() []ForecastRange {
	ranges := make([]ForecastRange, 0, 2)
	if p.IncludeShortRange {
		ranges = append(ranges, RangeShort)
	}
	if p.IncludeMediumRange {
		ranges = append(ranges, RangeMedium)
	}
	return ranges
}

// SuppressesAt reports whether quiet hours suppress delivery at the given
// instant. The window is evaluated on minutes since local midnight. A start
// later than the end wraps across midnight; an equal start and end never
// suppresses. The start minute is inside the window, the end minute outside.
func (p *NotificationPreferences) SuppressesAt(t time.Time) bool {
	if !p.QuietHoursEnabled {
		return false
	}

	start := p.QuietStartHour*60 + p.QuietStartMinute
	end := p.QuietEndHour*60 + p.QuietEndMinute
	if start == end {
		return false
	}

	local := t
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			local = t.In(loc)
		}
	}
	cur := local.Hour()*60 + local.Minute()

	if start > end {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}
