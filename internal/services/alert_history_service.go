package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riverwatchhq/riverwatch/internal/models"
	apperrors "github.com/riverwatchhq/riverwatch/pkg/errors"
)

// ListAlertsInput defines filters for querying a user's alert history.
type ListAlertsInput struct {
	UserID    string
	StationID string
	Limit     int
	Offset    int
}

// AlertHistoryService persists dispatched alerts and answers the
// deduplication questions the dispatcher asks.
type AlertHistoryService struct {
	db *gorm.DB
}

// NewAlertHistoryService constructs an AlertHistoryService.
func NewAlertHistoryService(db *gorm.DB) (*AlertHistoryService, error) {
	if db == nil {
		return nil, errors.New("alert history service: db is required")
	}
	return &AlertHistoryService{db: db}, nil
}

// Exists reports whether the user already received an alert for this station
// and return period within the window. A nonpositive window disables
// deduplication.
func (s *AlertHistoryService) Exists(ctx context.Context, userID, stationID string, returnYears int, window time.Duration) (bool, error) {
	ctx = ensureContext(ctx)
	if window <= 0 {
		return false, nil
	}

	cutoff := time.Now().UTC().Add(-window)
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("user_id = ? AND station_id = ? AND return_years = ? AND triggered_at >= ?",
			userID, stationID, returnYears, cutoff).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("alert history service: count recent alerts: %w", err)
	}
	return count > 0, nil
}

// Record stores the outcome of a dispatch attempt. Re-recording the same
// deterministic alert id for a user updates the existing row instead of
// growing the table.
func (s *AlertHistoryService) Record(ctx context.Context, alert *models.Alert) error {
	ctx = ensureContext(ctx)
	if alert == nil {
		return errors.New("alert history service: alert is required")
	}
	if strings.TrimSpace(alert.AlertID) == "" || strings.TrimSpace(alert.UserID) == "" {
		return errors.New("alert history service: alert id and user id are required")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "alert_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"station_name", "flow_value", "flow_unit", "threshold_flow",
			"triggered_at", "severity", "sent", "sent_at", "fail_reason",
			"metadata", "updated_at",
		}),
	}).Create(alert).Error
	if err != nil {
		return fmt.Errorf("alert history service: record alert: %w", err)
	}
	return nil
}

// Get returns one alert row scoped to its user.
func (s *AlertHistoryService) Get(ctx context.Context, userID, alertID string) (*models.Alert, error) {
	ctx = ensureContext(ctx)

	var alert models.Alert
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND alert_id = ?", strings.TrimSpace(userID), strings.TrimSpace(alertID)).
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("alert history service: load alert: %w", err)
	}
	return &alert, nil
}

// ListForUser returns a page of the user's alerts ordered by recency along
// with the total row count for pagination.
func (s *AlertHistoryService) ListForUser(ctx context.Context, input ListAlertsInput) ([]models.Alert, int64, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, 0, apperrors.NewBadRequest("user id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	query := s.db.WithContext(ctx).Model(&models.Alert{}).Where("user_id = ?", userID)
	if station := strings.TrimSpace(input.StationID); station != "" {
		query = query.Where("station_id = ?", station)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("alert history service: count alerts: %w", err)
	}

	var rows []models.Alert
	if err := query.
		Order("triggered_at DESC").
		Limit(limit).
		Offset(max(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("alert history service: list alerts: %w", err)
	}
	return rows, total, nil
}

// PurgeOlderThan deletes alerts triggered before now minus age and returns
// how many rows went away.
func (s *AlertHistoryService) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	if age <= 0 {
		return 0, errors.New("alert history service: purge age must be positive")
	}

	cutoff := time.Now().UTC().Add(-age)
	res := s.db.WithContext(ctx).
		Where("triggered_at < ?", cutoff).
		Delete(&models.Alert{})
	if res.Error != nil {
		return 0, fmt.Errorf("alert history service: purge alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
