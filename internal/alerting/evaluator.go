package alerting

import (
	"time"

	"github.com/riverwatchhq/riverwatch/internal/models"
)

// EvaluateParams carries everything needed to test one station's forecast
// against its thresholds on behalf of one user.
type EvaluateParams struct {
	UserID      string
	StationID   string
	StationName string
	Points      []models.ForecastPoint
	Thresholds  *models.ThresholdSet
	Ranges      []models.ForecastRange
	Now         time.Time
}

// Evaluate compares each forecast point against the station's return-period
// thresholds and yields at most one alert per point: the highest crossed
// threshold wins. Points outside the requested horizons are skipped, and
// flows are converted into the threshold set's unit before comparison.
// The function is pure; callers own persistence and delivery.
func Evaluate(params EvaluateParams) []*models.Alert {
	if params.Thresholds == nil || len(params.Points) == 0 {
		return nil
	}
	entries := params.Thresholds.Entries()
	if len(entries) == 0 {
		return nil
	}

	wanted := make(map[models.ForecastRange]struct{}, len(params.Ranges))
	for _, r := range params.Ranges {
		wanted[r] = struct{}{}
	}

	var alerts []*models.Alert
	for _, point := range params.Points {
		if _, ok := wanted[point.Range]; !ok {
			continue
		}

		flow := models.ConvertFlow(point.Flow, point.Unit, params.Thresholds.Unit)
		for _, entry := range entries {
			if flow < entry.Flow {
				continue
			}
			alerts = append(alerts, &models.Alert{
				AlertID:       models.NewAlertID(params.StationID, entry.ReturnYears, point.ValidTime),
				UserID:        params.UserID,
				StationID:     params.StationID,
				StationName:   params.StationName,
				FlowValue:     flow,
				FlowUnit:      params.Thresholds.Unit,
				ReturnYears:   entry.ReturnYears,
				ThresholdFlow: entry.Flow,
				Range:         point.Range,
				ForecastTime:  point.ValidTime,
				TriggeredAt:   params.Now,
				Severity:      models.SeverityForReturnPeriod(entry.ReturnYears),
			})
			break
		}
	}
	return alerts
}
