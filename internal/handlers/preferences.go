package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/services"
	"github.com/riverwatchhq/riverwatch/pkg/errors"
	"github.com/riverwatchhq/riverwatch/pkg/response"
)

// PreferencesHandler exposes HTTP endpoints for notification preferences.
type PreferencesHandler struct {
	service *services.PreferenceService
}

// NewPreferencesHandler constructs a preferences handler.
func NewPreferencesHandler(db *gorm.DB) (*PreferencesHandler, error) {
	service, err := services.NewPreferenceService(db)
	if err != nil {
		return nil, err
	}
	return &PreferencesHandler{service: service}, nil
}

// Get returns the stored preferences for a user, or defaults when none exist.
func (h *PreferencesHandler) Get(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	prefs, err := h.service.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prefs)
}

type updatePreferencesPayload struct {
	Enabled             *bool    `json:"enabled"`
	MonitoredStationIDs []string `json:"monitored_station_ids"`
	IncludeShortRange   *bool    `json:"include_short_range"`
	IncludeMediumRange  *bool    `json:"include_medium_range"`
	QuietHoursEnabled   *bool    `json:"quiet_hours_enabled"`
	QuietStartHour      *int     `json:"quiet_start_hour"`
	QuietStartMinute    *int     `json:"quiet_start_minute"`
	QuietEndHour        *int     `json:"quiet_end_hour"`
	QuietEndMinute      *int     `json:"quiet_end_minute"`
	Timezone            *string  `json:"timezone" validate:"omitempty,max=64"`
}

// Update creates or amends preferences. Absent fields keep their stored values.
func (h *PreferencesHandler) Update(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	var payload updatePreferencesPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	prefs, err := h.service.Upsert(requestContext(c), services.UpsertPreferencesInput{
		UserID:              userID,
		Enabled:             payload.Enabled,
		MonitoredStationIDs: payload.MonitoredStationIDs,
		IncludeShortRange:   payload.IncludeShortRange,
		IncludeMediumRange:  payload.IncludeMediumRange,
		QuietHoursEnabled:   payload.QuietHoursEnabled,
		QuietStartHour:      payload.QuietStartHour,
		QuietStartMinute:    payload.QuietStartMinute,
		QuietEndHour:        payload.QuietEndHour,
		QuietEndMinute:      payload.QuietEndMinute,
		Timezone:            payload.Timezone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, prefs)
}
