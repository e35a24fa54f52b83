package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riverwatchhq/riverwatch/internal/models"
	apperrors "github.com/riverwatchhq/riverwatch/pkg/errors"
)

// ErrStationNotFound is returned when a station id has no catalog entry.
var ErrStationNotFound = apperrors.New("STATION_NOT_FOUND", "Station not found", http.StatusNotFound)

// UpsertStationInput defines the catalog attributes of a gauge station.
type UpsertStationInput struct {
	ID        string
	Name      string
	RiverName string
	State     string
	Latitude  float64
	Longitude float64
}

// StationService maintains the gauge station catalog used to turn station
// ids into human-readable names.
type StationService struct {
	db *gorm.DB
}

// NewStationService constructs a StationService.
func NewStationService(db *gorm.DB) (*StationService, error) {
	if db == nil {
		return nil, errors.New("station service: db is required")
	}
	return &StationService{db: db}, nil
}

// Upsert creates or refreshes a catalog entry keyed by the upstream gauge id.
func (s *StationService) Upsert(ctx context.Context, input UpsertStationInput) (*models.Station, error) {
	ctx = ensureContext(ctx)
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, apperrors.NewBadRequest("station id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("station name is required")
	}

	station := models.Station{
		ID:        id,
		Name:      name,
		RiverName: strings.TrimSpace(input.RiverName),
		State:     strings.TrimSpace(input.State),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "river_name", "state", "latitude", "longitude", "updated_at",
		}),
	}).Create(&station).Error
	if err != nil {
		return nil, fmt.Errorf("station service: upsert station: %w", err)
	}
	return &station, nil
}

// Get loads one station by gauge id.
func (s *StationService) Get(ctx context.Context, id string) (*models.Station, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequest("station id is required")
	}

	var station models.Station
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&station).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStationNotFound
		}
		return nil, fmt.Errorf("station service: load station: %w", err)
	}
	return &station, nil
}

// List returns the whole catalog ordered by name.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	ctx = ensureContext(ctx)

	var rows []models.Station
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("station service: list stations: %w", err)
	}
	return rows, nil
}

// DisplayName resolves a station id to its catalog name, falling back to the
// raw id when the catalog has no entry. Alerts stay readable either way.
func (s *StationService) DisplayName(ctx context.Context, id string) string {
	station, err := s.Get(ctx, id)
	if err != nil || station.Name == "" {
		return id
	}
	return station.Name
}
