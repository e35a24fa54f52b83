package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riverwatchhq/riverwatch/internal/models"
	apperrors "github.com/riverwatchhq/riverwatch/pkg/errors"
)

// ErrDeviceNotFound is returned when a token has no registration.
var ErrDeviceNotFound = apperrors.New("DEVICE_NOT_FOUND", "Device token not found", http.StatusNotFound)

var allowedPlatforms = map[string]struct{}{
	"ios":     {},
	"android": {},
	"web":     {},
}

// RegisterDeviceInput describes a push token registration.
type RegisterDeviceInput struct {
	UserID   string
	Token    string
	Platform string
}

// DeviceTokenService stores the push tokens alerts are delivered to.
type DeviceTokenService struct {
	db *gorm.DB
}

// NewDeviceTokenService constructs a DeviceTokenService.
func NewDeviceTokenService(db *gorm.DB) (*DeviceTokenService, error) {
	if db == nil {
		return nil, errors.New("device token service: db is required")
	}
	return &DeviceTokenService{db: db}, nil
}

// Register stores a device token. Re-registering an existing token refreshes
// its owner, platform, and last-seen timestamp, which also handles devices
// that changed hands.
func (s *DeviceTokenService) Register(ctx context.Context, input RegisterDeviceInput) (*models.DeviceToken, error) {
	ctx = ensureContext(ctx)
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, apperrors.NewBadRequest("device token is required")
	}
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if _, ok := allowedPlatforms[platform]; !ok {
		return nil, apperrors.NewBadRequest("platform must be one of ios, android, web")
	}

	device := models.DeviceToken{
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		LastSeenAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "platform", "last_seen_at", "updated_at",
		}),
	}).Create(&device).Error
	if err != nil {
		return nil, fmt.Errorf("device token service: register token: %w", err)
	}

	var stored models.DeviceToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("device token service: reload token: %w", err)
	}
	return &stored, nil
}

// Remove deletes a token registration.
func (s *DeviceTokenService) Remove(ctx context.Context, token string) error {
	ctx = ensureContext(ctx)
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewBadRequest("device token is required")
	}

	res := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.DeviceToken{})
	if res.Error != nil {
		return fmt.Errorf("device token service: remove token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// TokensForUser lists the user's registered devices, most recently seen
// first. The dispatcher fans alerts out over this list.
func (s *DeviceTokenService) TokensForUser(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewBadRequest("user id is required")
	}

	var rows []models.DeviceToken
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("device token service: list tokens: %w", err)
	}
	return rows, nil
}

// PurgeStale deletes registrations not seen for the given age and returns
// how many rows went away.
func (s *DeviceTokenService) PurgeStale(ctx context.Context, age time.Duration) (int64, error) {
	ctx = ensureContext(ctx)
	if age <= 0 {
		return 0, errors.New("device token service: purge age must be positive")
	}

	cutoff := time.Now().UTC().Add(-age)
	res := s.db.WithContext(ctx).
		Where("last_seen_at < ?", cutoff).
		Delete(&models.DeviceToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("device token service: purge tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
