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

// StationsHandler exposes HTTP endpoints for the station catalogue.
type StationsHandler struct {
	service *services.StationService
}

// NewStationsHandler constructs a stations handler.
func NewStationsHandler(db *gorm.DB) (*StationsHandler, error) {
	service, err := services.NewStationService(db)
	if err != nil {
		return nil, err
	}
	return &StationsHandler{service: service}, nil
}

// List returns all known stations ordered by name.
func (h *StationsHandler) List(c *gin.Context) {
	stations, err := h.service.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stations)
}

// Get returns a single station.
func (h *StationsHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, errors.NewBadRequest("station id is required"))
		return
	}

	station, err := h.service.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, station)
}

type upsertStationPayload struct {
	Name      string  `json:"name" validate:"required,max=255"`
	RiverName string  `json:"river_name" validate:"max=255"`
	State     string  `json:"state" validate:"max=64"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Upsert creates or refreshes catalogue metadata for a station.
func (h *StationsHandler) Upsert(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, errors.NewBadRequest("station id is required"))
		return
	}

	var payload upsertStationPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	station, err := h.service.Upsert(requestContext(c), services.UpsertStationInput{
		ID:        id,
		Name:      payload.Name,
		RiverName: payload.RiverName,
		State:     payload.State,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, station)
}
