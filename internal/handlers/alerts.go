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

// AlertsHandler exposes HTTP endpoints for dispatched alert history.
type AlertsHandler struct {
	service *services.AlertHistoryService
}

// NewAlertsHandler constructs an alerts handler.
func NewAlertsHandler(db *gorm.DB) (*AlertsHandler, error) {
	service, err := services.NewAlertHistoryService(db)
	if err != nil {
		return nil, err
	}
	return &AlertsHandler{service: service}, nil
}

// List returns a user's alerts, newest first. Supports station filtering and
// limit/offset pagination.
func (h *AlertsHandler) List(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	limit := parseIntQuery(c, "limit", 25)
	offset := parseIntQuery(c, "offset", 0)

	alerts, total, err := h.service.ListForUser(requestContext(c), services.ListAlertsInput{
		UserID:    userID,
		StationID: strings.TrimSpace(c.Query("station_id")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, alerts, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

// Get returns a single alert owned by the user.
func (h *AlertsHandler) Get(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	alertID := strings.TrimSpace(c.Param("alertID"))
	if userID == "" || alertID == "" {
		response.Error(c, errors.NewBadRequest("user id and alert id are required"))
		return
	}

	alert, err := h.service.Get(requestContext(c), userID, alertID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, alert)
}
