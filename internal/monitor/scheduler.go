package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/riverwatchhq/riverwatch/pkg/logger"
)

const (
	defaultSchedule   = "@every 30m"
	defaultRunTimeout = 10 * time.Minute
)

// Scheduler drives periodic monitoring runs.
type Scheduler struct {
	orchestrator *Orchestrator
	cron         *cron.Cron
	schedule     string
	runTimeout   time.Duration
	log          *zap.Logger
}

// SchedulerOption customises the Scheduler.
type SchedulerOption func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) SchedulerOption {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for monitoring runs.
func WithSchedule(spec string) SchedulerOption {
	return func(s *Scheduler) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithRunTimeout caps how long one scheduled run may take.
func WithRunTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.runTimeout = timeout
		}
	}
}

// NewScheduler constructs a Scheduler around an orchestrator.
func NewScheduler(orchestrator *Orchestrator, opts ...SchedulerOption) (*Scheduler, error) {
	if orchestrator == nil {
		return nil, errors.New("monitor: orchestrator is required")
	}

	s := &Scheduler{
		orchestrator: orchestrator,
		schedule:     defaultSchedule,
		runTimeout:   defaultRunTimeout,
		log:          logger.WithModule("monitor.scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s, nil
}

// Start registers the monitoring job and launches the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("monitoring schedule started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler, waiting for a running job to complete.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes one run outside the schedule, e.g. for the trigger API.
func (s *Scheduler) RunOnce(ctx context.Context, input RunInput) (*RunSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.orchestrator.Run(ctx, input)
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	if _, err := s.orchestrator.Run(ctx, RunInput{Trigger: TriggerScheduled}); err != nil {
		s.log.Error("scheduled monitoring run failed", zap.Error(err))
	}
}
