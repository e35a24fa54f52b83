// Package alerting turns forecast data into user notifications. Evaluation
// is a pure comparison of forecast points against flood thresholds; the
// Dispatcher owns deduplication, delivery, and the persisted audit trail.
package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/riverwatchhq/riverwatch/internal/models"
	"github.com/riverwatchhq/riverwatch/internal/push"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

// DefaultDedupWindow is how long a (user, station, return period) triple
// stays quiet after an alert before the same threshold may fire again.
const DefaultDedupWindow = 24 * time.Hour

// Outcome classifies what happened to one alert candidate.
type Outcome string

const (
	// OutcomeSent means at least one device received the notification.
	OutcomeSent Outcome = "sent"
	// OutcomeSuppressed means a recent alert for the same threshold exists.
	OutcomeSuppressed Outcome = "suppressed"
	// OutcomeUndeliverable means the user has no registered devices.
	OutcomeUndeliverable Outcome = "undeliverable"
	// OutcomeFailed means every delivery attempt errored.
	OutcomeFailed Outcome = "failed"
)

// HistoryStore is the slice of alert persistence the dispatcher needs.
type HistoryStore interface {
	Exists(ctx context.Context, userID, stationID string, returnYears int, window time.Duration) (bool, error)
	Record(ctx context.Context, alert *models.Alert) error
}

// DeviceDirectory resolves the devices registered to a user.
type DeviceDirectory interface {
	TokensForUser(ctx context.Context, userID string) ([]models.DeviceToken, error)
}

// Dispatcher delivers evaluated alerts. Every attempted alert is recorded
// whether or not delivery succeeded; suppressed duplicates are not
// re-recorded so the original row keeps its timestamps.
type Dispatcher struct {
	history HistoryStore
	devices DeviceDirectory
	sender  push.Sender
	window  time.Duration
	clock   clockwork.Clock
	logger  *zap.Logger
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDedupWindow overrides the duplicate suppression window.
func WithDedupWindow(window time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithDispatcherClock injects a clock, primarily for tests.
func WithDispatcherClock(clock clockwork.Clock) DispatcherOption {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// NewDispatcher wires alert delivery against history, device storage, and a
// push sender.
func NewDispatcher(history HistoryStore, devices DeviceDirectory, sender push.Sender, opts ...DispatcherOption) (*Dispatcher, error) {
	if history == nil {
		return nil, fmt.Errorf("alerting: history store is required")
	}
	if devices == nil {
		return nil, fmt.Errorf("alerting: device directory is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("alerting: push sender is required")
	}

	d := &Dispatcher{
		history: history,
		devices: devices,
		sender:  sender,
		window:  DefaultDedupWindow,
		clock:   clockwork.NewRealClock(),
		logger:  logger.WithModule("alerting"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch pushes one alert to all of the user's devices. The returned error
// reports infrastructure faults (history or device lookups, persisting the
// record); delivery failures are folded into the recorded alert and the
// OutcomeFailed result instead.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *models.Alert) (Outcome, error) {
	duplicate, err := d.history.Exists(ctx, alert.UserID, alert.StationID, alert.ReturnYears, d.window)
	if err != nil {
		return "", fmt.Errorf("alerting: check history: %w", err)
	}
	if duplicate {
		metrics.AlertsDispatched.WithLabelValues(string(OutcomeSuppressed)).Inc()
		d.logger.Debug("alert suppressed by dedup window",
			zap.String("alert_id", alert.AlertID),
			zap.String("user_id", alert.UserID))
		return OutcomeSuppressed, nil
	}

	tokens, err := d.devices.TokensForUser(ctx, alert.UserID)
	if err != nil {
		return "", fmt.Errorf("alerting: list devices: %w", err)
	}

	if len(tokens) == 0 {
		alert.Sent = false
		alert.FailReason = "no registered devices"
		if err := d.record(ctx, alert); err != nil {
			return "", err
		}
		metrics.AlertsDispatched.WithLabelValues(string(OutcomeUndeliverable)).Inc()
		d.logger.Warn("alert has no delivery targets",
			zap.String("alert_id", alert.AlertID),
			zap.String("user_id", alert.UserID))
		return OutcomeUndeliverable, nil
	}

	now := d.clock.Now().UTC()
	title := Title(alert)
	body := Body(alert, now)
	data := map[string]string{
		"alert_id":     alert.AlertID,
		"station_id":   alert.StationID,
		"severity":     string(alert.Severity),
		"return_years": strconv.Itoa(alert.ReturnYears),
		"forecast_at":  alert.ForecastTime.UTC().Format(time.RFC3339),
	}

	var delivered int
	var sendErr error
	for _, token := range tokens {
		if err := d.sender.Send(ctx, token.Token, title, body, data); err != nil {
			sendErr = multierr.Append(sendErr, err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		alert.Sent = true
		alert.SentAt = &now
		alert.FailReason = ""
	} else {
		alert.Sent = false
		alert.FailReason = sendErr.Error()
	}
	if meta, err := json.Marshal(data); err == nil {
		alert.Metadata = datatypes.JSON(meta)
	}

	if err := d.record(ctx, alert); err != nil {
		return "", err
	}

	if delivered == 0 {
		metrics.AlertsDispatched.WithLabelValues(string(OutcomeFailed)).Inc()
		d.logger.Error("alert delivery failed on all devices",
			zap.String("alert_id", alert.AlertID),
			zap.String("user_id", alert.UserID),
			zap.Int("devices", len(tokens)),
			zap.Error(sendErr))
		return OutcomeFailed, nil
	}

	if sendErr != nil {
		d.logger.Warn("alert delivery partially failed",
			zap.String("alert_id", alert.AlertID),
			zap.Int("delivered", delivered),
			zap.Int("devices", len(tokens)),
			zap.Error(sendErr))
	}
	metrics.AlertsDispatched.WithLabelValues(string(OutcomeSent)).Inc()
	return OutcomeSent, nil
}

func (d *Dispatcher) record(ctx context.Context, alert *models.Alert) error {
	if err := d.history.Record(ctx, alert); err != nil {
		return fmt.Errorf("alerting: record alert: %w", err)
	}
	return nil
}
