// Package monitor runs the scheduled forecast checks: it walks every user
// with alerting enabled, compares the forecasts of their stations against
// flood thresholds, and hands crossings to the alert dispatcher.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riverwatchhq/riverwatch/internal/alerting"
	"github.com/riverwatchhq/riverwatch/internal/models"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

// DefaultConcurrency bounds how many user/station units run at once.
const DefaultConcurrency = 8

// Run triggers, used as metric labels and persisted with the run state.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Run statuses persisted for the readiness probe.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// PreferenceSource yields the users a run must evaluate.
type PreferenceSource interface {
	ActiveUsers(ctx context.Context) ([]models.NotificationPreferences, error)
	Get(ctx context.Context, userID string) (*models.NotificationPreferences, error)
}

// ForecastSource returns forecast series, typically through the read-through
// cache provider.
type ForecastSource interface {
	Series(ctx context.Context, stationID string, fr models.ForecastRange) ([]models.ForecastPoint, error)
}

// ThresholdSource returns station flood thresholds.
type ThresholdSource interface {
	Thresholds(ctx context.Context, stationID string) (*models.ThresholdSet, error)
}

// StationNamer resolves station ids to display names.
type StationNamer interface {
	DisplayName(ctx context.Context, id string) string
}

// AlertDispatcher delivers evaluated alerts.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert *models.Alert) (alerting.Outcome, error)
}

// RunInput selects what a run covers. An empty UserID means every active
// user.
type RunInput struct {
	Trigger string
	UserID  string
}

// UserResult summarises one user's slice of a run.
type UserResult struct {
	UserID           string   `json:"user_id"`
	StationsChecked  int      `json:"stations_checked"`
	AlertsSent       int      `json:"alerts_sent"`
	AlertsSuppressed int      `json:"alerts_suppressed"`
	Undeliverable    int      `json:"undeliverable"`
	Failures         []string `json:"failures,omitempty"`
}

// RunSummary aggregates a whole monitoring run.
type RunSummary struct {
	Trigger          string       `json:"trigger"`
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       time.Time    `json:"finished_at"`
	UsersProcessed   int          `json:"users_processed"`
	StationsChecked  int          `json:"stations_checked"`
	AlertsSent       int          `json:"alerts_sent"`
	AlertsSuppressed int          `json:"alerts_suppressed"`
	Undeliverable    int          `json:"undeliverable"`
	Failures         int          `json:"failures"`
	Results          []UserResult `json:"results,omitempty"`
}

// Status classifies the run for the persisted state and metrics.
func (s *RunSummary) Status() string {
	if s.Failures > 0 {
		return StatusDegraded
	}
	return StatusOK
}

// Dependencies wires the orchestrator's collaborators.
type Dependencies struct {
	Preferences PreferenceSource
	Forecasts   ForecastSource
	Thresholds  ThresholdSource
	Stations    StationNamer
	Dispatcher  AlertDispatcher
	State       *RunStateStore
}

// Orchestrator coordinates monitoring runs. Each (user, station) pair is an
// isolated unit of work: one unit failing leaves all others untouched.
type Orchestrator struct {
	deps        Dependencies
	clock       clockwork.Clock
	concurrency int
	log         *zap.Logger
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConcurrency bounds parallel unit evaluation.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithClock injects a clock, primarily for tests.
func WithClock(clock clockwork.Clock) OrchestratorOption {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// NewOrchestrator validates the dependency set and builds an Orchestrator.
func NewOrchestrator(deps Dependencies, opts ...OrchestratorOption) (*Orchestrator, error) {
	if deps.Preferences == nil {
		return nil, errors.New("monitor: preference source is required")
	}
	if deps.Forecasts == nil {
		return nil, errors.New("monitor: forecast source is required")
	}
	if deps.Thresholds == nil {
		return nil, errors.New("monitor: threshold source is required")
	}
	if deps.Dispatcher == nil {
		return nil, errors.New("monitor: dispatcher is required")
	}

	o := &Orchestrator{
		deps:        deps,
		clock:       clockwork.NewRealClock(),
		concurrency: DefaultConcurrency,
		log:         logger.WithModule("monitor"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one monitoring pass and reports what happened. Unit failures
// are folded into the summary; the returned error covers run-level faults
// such as being unable to list users at all.
func (o *Orchestrator) Run(ctx context.Context, input RunInput) (*RunSummary, error) {
	trigger := input.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	startedAt := o.clock.Now().UTC()
	summary := &RunSummary{Trigger: trigger, StartedAt: startedAt}

	users, err := o.selectUsers(ctx, input.UserID)
	if err != nil {
		metrics.MonitorRuns.WithLabelValues(trigger, StatusError).Inc()
		o.recordState(ctx, startedAt, StatusError)
		return nil, err
	}

	results := o.processUsers(ctx, users)

	summary.FinishedAt = o.clock.Now().UTC()
	summary.Results = results
	summary.UsersProcessed = len(results)
	for _, r := range results {
		summary.StationsChecked += r.StationsChecked
		summary.AlertsSent += r.AlertsSent
		summary.AlertsSuppressed += r.AlertsSuppressed
		summary.Undeliverable += r.Undeliverable
		summary.Failures += len(r.Failures)
	}

	status := summary.Status()
	metrics.MonitorRuns.WithLabelValues(trigger, status).Inc()
	metrics.MonitorRunDuration.Observe(summary.FinishedAt.Sub(startedAt).Seconds())
	o.recordState(ctx, startedAt, status)

	o.log.Info("monitoring run finished",
		zap.String("trigger", trigger),
		zap.Int("users", summary.UsersProcessed),
		zap.Int("stations", summary.StationsChecked),
		zap.Int("alerts_sent", summary.AlertsSent),
		zap.Int("alerts_suppressed", summary.AlertsSuppressed),
		zap.Int("failures", summary.Failures),
		zap.Duration("duration", summary.FinishedAt.Sub(startedAt)))
	return summary, nil
}

func (o *Orchestrator) selectUsers(ctx context.Context, userID string) ([]models.NotificationPreferences, error) {
	if userID == "" {
		users, err := o.deps.Preferences.ActiveUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("monitor: list active users: %w", err)
		}
		return users, nil
	}

	prefs, err := o.deps.Preferences.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("monitor: load user %s: %w", userID, err)
	}
	if !prefs.Enabled || len(prefs.MonitoredStationIDs) == 0 {
		return nil, nil
	}
	return []models.NotificationPreferences{*prefs}, nil
}

// unit is one (user, station) check.
type unit struct {
	prefs   *models.NotificationPreferences
	station string
	result  *UserResult
}

func (o *Orchestrator) processUsers(ctx context.Context, users []models.NotificationPreferences) []UserResult {
	if len(users) == 0 {
		return nil
	}

	// Users inside their quiet window are not candidates this tick. Their
	// stations are re-evaluated on the next run, so nothing is lost.
	now := o.clock.Now()
	candidates := make([]models.NotificationPreferences, 0, len(users))
	for _, prefs := range users {
		if prefs.SuppressesAt(now) {
			o.log.Debug("user inside quiet hours", zap.String("user_id", prefs.UserID))
			continue
		}
		candidates = append(candidates, prefs)
	}
	if len(candidates) == 0 {
		return nil
	}

	results := make([]UserResult, len(candidates))
	var units []unit
	for i := range candidates {
		prefs := &candidates[i]
		results[i] = UserResult{UserID: prefs.UserID}
		if len(prefs.Ranges()) == 0 {
			continue
		}
		for _, station := range prefs.MonitoredStationIDs {
			units = append(units, unit{prefs: prefs, station: station, result: &results[i]})
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := o.processUnit(gctx, u.prefs, u.station)

			mu.Lock()
			defer mu.Unlock()
			u.result.StationsChecked++
			u.result.AlertsSent += outcome.sent
			u.result.AlertsSuppressed += outcome.suppressed
			u.result.Undeliverable += outcome.undeliverable
			u.result.Failures = append(u.result.Failures, outcome.failures...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.log.Warn("monitoring run interrupted", zap.Error(err))
	}

	for i := range results {
		sort.Strings(results[i].Failures)
	}
	return results
}

// unitOutcome accumulates counters for one (user, station) unit.
type unitOutcome struct {
	sent          int
	suppressed    int
	undeliverable int
	failures      []string
}

func (o *Orchestrator) processUnit(ctx context.Context, prefs *models.NotificationPreferences, stationID string) unitOutcome {
	var out unitOutcome
	fail := func(err error) unitOutcome {
		metrics.MonitorUnits.WithLabelValues("error").Inc()
		out.failures = append(out.failures, fmt.Sprintf("%s: %v", stationID, err))
		o.log.Warn("monitoring unit failed",
			zap.String("user_id", prefs.UserID),
			zap.String("station_id", stationID),
			zap.Error(err))
		return out
	}

	thresholds, err := o.deps.Thresholds.Thresholds(ctx, stationID)
	if err != nil {
		return fail(err)
	}
	if thresholds == nil || len(thresholds.Flows) == 0 {
		metrics.MonitorUnits.WithLabelValues("skipped").Inc()
		o.log.Debug("station has no published thresholds", zap.String("station_id", stationID))
		return out
	}

	var points []models.ForecastPoint
	for _, fr := range prefs.Ranges() {
		series, err := o.deps.Forecasts.Series(ctx, stationID, fr)
		if err != nil {
			return fail(err)
		}
		points = append(points, series...)
	}

	alerts := alerting.Evaluate(alerting.EvaluateParams{
		UserID:      prefs.UserID,
		StationID:   stationID,
		StationName: o.stationName(ctx, stationID),
		Points:      points,
		Thresholds:  thresholds,
		Ranges:      prefs.Ranges(),
		Now:         o.clock.Now().UTC(),
	})
	if len(alerts) == 0 {
		metrics.MonitorUnits.WithLabelValues("ok").Inc()
		return out
	}

	for _, alert := range alerts {
		outcome, err := o.deps.Dispatcher.Dispatch(ctx, alert)
		if err != nil {
			return fail(err)
		}
		switch outcome {
		case alerting.OutcomeSent:
			out.sent++
		case alerting.OutcomeSuppressed:
			out.suppressed++
		case alerting.OutcomeUndeliverable:
			out.undeliverable++
		case alerting.OutcomeFailed:
			out.failures = append(out.failures, fmt.Sprintf("%s: delivery failed for alert %s", stationID, alert.AlertID))
		}
	}

	metrics.MonitorUnits.WithLabelValues("ok").Inc()
	return out
}

func (o *Orchestrator) stationName(ctx context.Context, stationID string) string {
	if o.deps.Stations == nil {
		return stationID
	}
	return o.deps.Stations.DisplayName(ctx, stationID)
}

func (o *Orchestrator) recordState(ctx context.Context, at time.Time, status string) {
	if o.deps.State == nil {
		return
	}
	if err := o.deps.State.RecordRun(ctx, at, status); err != nil {
		o.log.Warn("persisting run state failed", zap.Error(err))
	}
}
