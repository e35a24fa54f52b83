package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/database"
)

// RunStateStore persists when the pipeline last ran and how it went, so the
// readiness probe can flag a stalled scheduler across restarts.
type RunStateStore struct {
	db *gorm.DB
}

// NewRunStateStore constructs a RunStateStore.
func NewRunStateStore(db *gorm.DB) (*RunStateStore, error) {
	if db == nil {
		return nil, errors.New("monitor: run state store: db is required")
	}
	return &RunStateStore{db: db}, nil
}

// RecordRun stores the start time and status of the latest run.
func (s *RunStateStore) RecordRun(ctx context.Context, at time.Time, status string) error {
	if err := database.UpsertSystemSetting(ctx, s.db, database.MonitorLastRunAtSetting, at.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("monitor: record run time: %w", err)
	}
	if err := database.UpsertSystemSetting(ctx, s.db, database.MonitorLastRunStatusSetting, status); err != nil {
		return fmt.Errorf("monitor: record run status: %w", err)
	}
	return nil
}

// LastRun returns the most recent run's start time and status. A zero time
// means no run has been recorded yet.
func (s *RunStateStore) LastRun(ctx context.Context) (time.Time, string, error) {
	raw, err := database.GetSystemSetting(ctx, s.db, database.MonitorLastRunAtSetting)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("monitor: load run time: %w", err)
	}
	status, err := database.GetSystemSetting(ctx, s.db, database.MonitorLastRunStatusSetting)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("monitor: load run status: %w", err)
	}
	if raw == "" {
		return time.Time{}, status, nil
	}

	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, status, fmt.Errorf("monitor: parse run time %q: %w", raw, err)
	}
	return at, status, nil
}
