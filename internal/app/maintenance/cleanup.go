package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/models"
	"github.com/riverwatchhq/riverwatch/internal/services"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
)

const (
	defaultAlertRetention  = 90 * 24 * time.Hour
	defaultDeviceRetention = 180 * 24 * time.Hour
	defaultAlertSpec       = "@daily"
	defaultDeviceSpec      = "@daily"
	defaultCacheSpec       = "@hourly"
)

// Cleaner coordinates background maintenance tasks such as purging aged alert
// history, dropping stale device tokens, and removing expired cache entries.
type Cleaner struct {
	db      *gorm.DB
	alerts  *services.AlertHistoryService
	devices *services.DeviceTokenService
	cron    *cron.Cron
	now     func() time.Time
	log     *zap.Logger
	enabled bool

	alertRetention  time.Duration
	deviceRetention time.Duration

	alertSchedule  string
	deviceSchedule string
	cacheSchedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAlertRetention adjusts how long alert history is retained before cleanup.
func WithAlertRetention(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.alertRetention = age
		}
	}
}

// WithDeviceRetention adjusts how long unseen device tokens are retained.
func WithDeviceRetention(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.deviceRetention = age
		}
	}
}

// WithAlertSchedule overrides the cron specification for alert history cleanup.
func WithAlertSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.alertSchedule = spec
		}
	}
}

// WithDeviceSchedule overrides the cron specification for device token cleanup.
func WithDeviceSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.deviceSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache entry cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, alerts *services.AlertHistoryService, devices *services.DeviceTokenService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:              db,
		alerts:          alerts,
		devices:         devices,
		now:             time.Now,
		alertRetention:  defaultAlertRetention,
		deviceRetention: defaultDeviceRetention,
		alertSchedule:   defaultAlertSpec,
		deviceSchedule:  defaultDeviceSpec,
		cacheSchedule:   defaultCacheSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	// Determine whether any job is enabled.
	cleaner.enabled = cleaner.alerts != nil || cleaner.devices != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.alerts != nil && c.alertRetention > 0 {
		if _, err := c.cron.AddFunc(c.alertSchedule, func() {
			ctx := context.Background()
			if _, err := c.alerts.PurgeOlderThan(ctx, c.alertRetention); err != nil {
				c.log.Warn("alert history cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.devices != nil && c.deviceRetention > 0 {
		if _, err := c.cron.AddFunc(c.deviceSchedule, func() {
			ctx := context.Background()
			if _, err := c.devices.PurgeStale(ctx, c.deviceRetention); err != nil {
				c.log.Warn("device token cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupCacheEntries(ctx, c.db, c.now()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.alerts != nil && c.alertRetention > 0 {
		if _, err := c.alerts.PurgeOlderThan(ctx, c.alertRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.devices != nil && c.deviceRetention > 0 {
		if _, err := c.devices.PurgeStale(ctx, c.deviceRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := CleanupCacheEntries(ctx, c.db, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CleanupCacheEntries removes expired cache rows. Entries with a zero expiry
// never expire and are kept.
func CleanupCacheEntries(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup cache entries: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("expires_at < ? AND expires_at > ?", now, time.Time{}).
		Delete(&models.CacheEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup cache entries: %w", result.Error)
	}

	return result.RowsAffected, nil
}
