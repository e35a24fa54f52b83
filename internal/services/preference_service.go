package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/models"
	apperrors "github.com/riverwatchhq/riverwatch/pkg/errors"
)

// UpsertPreferencesInput defines the caller-settable notification settings.
// Nil pointer fields keep the stored value, so partial updates are safe.
type UpsertPreferencesInput struct {
	UserID              string
	Enabled             *bool
	MonitoredStationIDs []string
	IncludeShortRange   *bool
	IncludeMediumRange  *bool
	QuietHoursEnabled   *bool
	QuietStartHour      *int
	QuietStartMinute    *int
	QuietEndHour        *int
	QuietEndMinute      *int
	Timezone            *string
}

// PreferenceService manages per-user notification settings.
type PreferenceService struct {
	db *gorm.DB
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(db *gorm.DB) (*PreferenceService, error) {
	if db == nil {
		return nil, errors.New("preference service: db is required")
	}
	return &PreferenceService{db: db}, nil
}

// DefaultPreferences returns the settings applied to users who never saved
// any. Alerting is on but monitors nothing until stations are added.
func DefaultPreferences(userID string) *models.NotificationPreferences {
	return &models.NotificationPreferences{
		UserID:             userID,
		Enabled:            true,
		IncludeShortRange:  true,
		IncludeMediumRange: true,
		Timezone:           "UTC",
	}
}

// Get returns the stored preferences for a user, or the defaults when the
// user has never saved any. The defaults are not persisted.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	var prefs models.NotificationPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DefaultPreferences(userID), nil
		}
		return nil, fmt.Errorf("preference service: load preferences: %w", err)
	}
	return &prefs, nil
}

// Upsert creates or updates a user's preferences from the populated input
// fields and returns the stored state.
func (s *PreferenceService) Upsert(ctx context.Context, input UpsertPreferencesInput) (*models.NotificationPreferences, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	if err := validatePreferencesInput(input); err != nil {
		return nil, err
	}

	var prefs models.NotificationPreferences
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		prefs = *DefaultPreferences(userID)
		applyPreferencesInput(&prefs, input)
		if err := s.db.WithContext(ctx).Create(&prefs).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, apperrors.ErrConflict.WithInternal(err)
			}
			return nil, fmt.Errorf("preference service: create preferences: %w", err)
		}
		return &prefs, nil
	case err != nil:
		return nil, fmt.Errorf("preference service: load preferences: %w", err)
	}

	applyPreferencesInput(&prefs, input)
	if err := s.db.WithContext(ctx).Save(&prefs).Error; err != nil {
		return nil, fmt.Errorf("preference service: update preferences: %w", err)
	}
	return &prefs, nil
}

// ActiveUsers returns the preferences of every user the monitoring run must
// evaluate: alerting enabled with at least one monitored station.
func (s *PreferenceService) ActiveUsers(ctx context.Context) ([]models.NotificationPreferences, error) {
	ctx = ensureContext(ctx)

	var rows []models.NotificationPreferences
	if err := s.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("user_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("preference service: list active users: %w", err)
	}

	active := rows[:0]
	for _, row := range rows {
		if len(row.MonitoredStationIDs) > 0 {
			active = append(active, row)
		}
	}
	return active, nil
}

func validatePreferencesInput(input UpsertPreferencesInput) error {
	for _, hour := range []*int{input.QuietStartHour, input.QuietEndHour} {
		if hour != nil && (*hour < 0 || *hour > 23) {
			return apperrors.NewBadRequest("quiet hours must be between 0 and 23")
		}
	}
	for _, minute := range []*int{input.QuietStartMinute, input.QuietEndMinute} {
		if minute != nil && (*minute < 0 || *minute > 59) {
			return apperrors.NewBadRequest("quiet minutes must be between 0 and 59")
		}
	}
	if input.Timezone != nil && strings.TrimSpace(*input.Timezone) != "" {
		if _, err := time.LoadLocation(strings.TrimSpace(*input.Timezone)); err != nil {
			return apperrors.NewBadRequest(fmt.Sprintf("unknown timezone %q", strings.TrimSpace(*input.Timezone)))
		}
	}
	return nil
}

func applyPreferencesInput(prefs *models.NotificationPreferences, input UpsertPreferencesInput) {
	if input.Enabled != nil {
		prefs.Enabled = *input.Enabled
	}
	if input.MonitoredStationIDs != nil {
		prefs.MonitoredStationIDs = datatypes.NewJSONSlice(normaliseIDs(input.MonitoredStationIDs))
	}
	if input.IncludeShortRange != nil {
		prefs.IncludeShortRange = *input.IncludeShortRange
	}
	if input.IncludeMediumRange != nil {
		prefs.IncludeMediumRange = *input.IncludeMediumRange
	}
	if input.QuietHoursEnabled != nil {
		prefs.QuietHoursEnabled = *input.QuietHoursEnabled
	}
	if input.QuietStartHour != nil {
		prefs.QuietStartHour = *input.QuietStartHour
	}
	if input.QuietStartMinute != nil {
		prefs.QuietStartMinute = *input.QuietStartMinute
	}
	if input.QuietEndHour != nil {
		prefs.QuietEndHour = *input.QuietEndHour
	}
	if input.QuietEndMinute != nil {
		prefs.QuietEndMinute = *input.QuietEndMinute
	}
	if input.Timezone != nil {
		prefs.Timezone = strings.TrimSpace(*input.Timezone)
	}
}
