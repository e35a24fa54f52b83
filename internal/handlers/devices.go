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

// DevicesHandler exposes HTTP endpoints for push device registration.
type DevicesHandler struct {
	service *services.DeviceTokenService
}

// NewDevicesHandler constructs a devices handler.
func NewDevicesHandler(db *gorm.DB) (*DevicesHandler, error) {
	service, err := services.NewDeviceTokenService(db)
	if err != nil {
		return nil, err
	}
	return &DevicesHandler{service: service}, nil
}

type registerDevicePayload struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

// Register stores a push token for the user. Re-registering an existing
// token moves it to the new user.
func (h *DevicesHandler) Register(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	var payload registerDevicePayload
	if !bindAndValidate(c, &payload) {
		return
	}

	device, err := h.service.Register(requestContext(c), services.RegisterDeviceInput{
		UserID:   userID,
		Token:    payload.Token,
		Platform: payload.Platform,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, device)
}

// List returns the registered devices for a user.
func (h *DevicesHandler) List(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userID"))
	if userID == "" {
		response.Error(c, errors.NewBadRequest("user id is required"))
		return
	}

	devices, err := h.service.TokensForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, devices)
}

// Remove deletes a device token.
func (h *DevicesHandler) Remove(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, errors.NewBadRequest("device token is required"))
		return
	}

	if err := h.service.Remove(requestContext(c), token); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
