package models

import "time"

// FlowUnit identifies the unit a discharge value is expressed in.
type FlowUnit string

const (
	// FlowUnitCFS is cubic feet per second.
	FlowUnitCFS FlowUnit = "cfs"
	// FlowUnitCMS is cubic meters per second.
	FlowUnitCMS FlowUnit = "cms"
)

// cfsPerCMS is the conversion factor between the two supported units.
const cfsPerCMS = 35.3146667

// Valid reports whether the unit is one of the supported flow units.
func (u FlowUnit) Valid() bool {
	return u == FlowUnitCFS || u == FlowUnitCMS
}

// ConvertFlow converts a discharge value between flow units. Values already
// in the target unit pass through unchanged, as do unknown units.
func ConvertFlow(value float64, from, to FlowUnit) float64 {
	if from == to || !from.Valid() || !to.Valid() {
		return value
	}
	if from == FlowUnitCMS {
		return value * cfsPerCMS
	}
	return value / cfsPerCMS
}

// ForecastRange identifies which forecast horizon a series belongs to.
type ForecastRange string

const (
	// RangeShort covers roughly the next 18 hours of hourly values.
	RangeShort ForecastRange = "short_range"
	// RangeMedium covers several days of six-hourly values.
	RangeMedium ForecastRange = "medium_range"
)

// Valid reports whether the range is a known forecast horizon.
func (r ForecastRange) Valid() bool {
	return r == RangeShort || r == RangeMedium
}

// ForecastPoint is a single predicted discharge value at a future time.
type ForecastPoint struct {
	ValidTime time.Time     `json:"valid_time"`
	Flow      float64       `json:"flow"`
	Unit      FlowUnit      `json:"unit"`
	Range     ForecastRange `json:"range"`
}
