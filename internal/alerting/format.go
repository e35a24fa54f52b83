package alerting

import (
	"fmt"
	"strconv"
	"time"

	"github.com/riverwatchhq/riverwatch/internal/models"
)

// Title renders the push notification title for an alert.
func Title(alert *models.Alert) string {
	return fmt.Sprintf("%s Flow Alert: %s", alert.Severity.DisplayName(), alert.StationName)
}

// Body renders the push notification body. The forecast date is phrased
// relative to now: "Today", "Tomorrow", "In N days" up to a week out, and a
// calendar date beyond that.
func Body(alert *models.Alert, now time.Time) string {
	return fmt.Sprintf("Forecast flow of %s %s %s exceeds the %d-year flood threshold (%s %s).",
		formatFlow(alert.FlowValue), alert.FlowUnit,
		FormatForecastDay(alert.ForecastTime, now),
		alert.ReturnYears,
		formatFlow(alert.ThresholdFlow), alert.FlowUnit,
	)
}

// FormatForecastDay phrases when a forecast point lands relative to now.
// Both times are compared by calendar day in now's location.
func FormatForecastDay(forecast, now time.Time) string {
	local := forecast.In(now.Location())
	days := daysBetween(now, local)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return "On " + local.Format("Jan 2")
	}
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

func formatFlow(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
