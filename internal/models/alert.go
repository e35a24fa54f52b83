package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Alert records one threshold crossing delivered (or attempted) to one user.
// AlertID is derived from the triggering condition, so re-evaluating the same
// forecast always produces the same identifier and repeated writes collapse
// onto the existing row.
type Alert struct {
	BaseModel

	AlertID string `gorm:"size:128;not null;uniqueIndex:idx_alerts_user_alert,priority:2" json:"alert_id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_alerts_user_alert,priority:1;index" json:"user_id"`

	StationID   string `gorm:"size:64;not null;index" json:"station_id"`
	StationName string `gorm:"size:255" json:"station_name"`

	FlowValue     float64       `json:"flow_value"`
	FlowUnit      FlowUnit      `gorm:"size:8" json:"flow_unit"`
	ReturnYears   int           `json:"return_years"`
	ThresholdFlow float64       `json:"threshold_flow"`
	Range         ForecastRange `gorm:"size:32;column:forecast_range" json:"forecast_range"`

	ForecastTime time.Time `gorm:"index" json:"forecast_time"`
	TriggeredAt  time.Time `gorm:"index" json:"triggered_at"`
	Severity     Severity  `gorm:"size:16" json:"severity"`

	Sent       bool           `json:"sent"`
	SentAt     *time.Time     `json:"sent_at,omitempty"`
	FailReason string         `gorm:"size:255" json:"fail_reason,omitempty"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}

// NewAlertID builds the deterministic identifier for a threshold crossing.
// It depends only on the station, the crossed return period and the forecast
// point's timestamp, so duplicate evaluations collide by construction.
func NewAlertID(stationID string, returnYears int, forecastTime time.Time) string {
	return fmt.Sprintf("%s-%d-%d", stationID, returnYears, forecastTime.Unix())
}
