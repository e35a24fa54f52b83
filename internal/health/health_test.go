package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverwatchhq/riverwatch/internal/cache"
	"github.com/riverwatchhq/riverwatch/internal/database/testutil"
	"github.com/riverwatchhq/riverwatch/internal/monitor"
)

func upCheck(name string) Check {
	return NewCheck(name, func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusUp}
	})
}

func TestManagerEvaluate(t *testing.T) {
	m := NewManager()
	m.RegisterLiveness(upCheck("app"))
	m.RegisterReadiness(upCheck("database"))
	m.RegisterReadiness(NewCheck("cache", func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusDegraded, Details: "slow"}
	}))

	live := m.EvaluateLiveness(context.Background())
	assert.True(t, live.Success)
	assert.Equal(t, StatusUp, live.Status)

	ready := m.EvaluateReadiness(context.Background())
	assert.False(t, ready.Success)
	assert.Equal(t, StatusDegraded, ready.Status)
	require.Len(t, ready.Checks, 2)
	assert.Equal(t, "cache", ready.Checks[1].Component)
}

func TestManagerDownDominatesDegraded(t *testing.T) {
	m := NewManager()
	m.RegisterReadiness(NewCheck("a", func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusDown}
	}))
	m.RegisterReadiness(NewCheck("b", func(context.Context) ProbeResult {
		return ProbeResult{Status: StatusDegraded}
	}))

	report := m.EvaluateReadiness(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.False(t, report.Success)
}

func TestRunCheckRecoversPanics(t *testing.T) {
	m := NewManager()
	m.RegisterReadiness(NewCheck("explosive", func(context.Context) ProbeResult {
		panic("boom")
	}))

	report := m.EvaluateReadiness(context.Background())
	require.Len(t, report.Checks, 1)
	assert.Equal(t, StatusDown, report.Checks[0].Status)
	assert.Equal(t, "boom", report.Checks[0].Details)
}

func TestMergeReports(t *testing.T) {
	live := Report{Success: true, Status: StatusUp, Checks: []ProbeResult{{Component: "app", Status: StatusUp}}}
	ready := Report{Success: false, Status: StatusDown, Checks: []ProbeResult{{Component: "db", Status: StatusDown}}}

	merged := MergeReports(live, ready)
	assert.False(t, merged.Success)
	assert.Equal(t, StatusDown, merged.Status)
	assert.Len(t, merged.Checks, 2)
}

func TestResultFromError(t *testing.T) {
	up := ResultFromError("db", nil, time.Millisecond)
	assert.Equal(t, StatusUp, up.Status)

	down := ResultFromError("db", errors.New("refused"), time.Millisecond)
	assert.Equal(t, StatusDown, down.Status)
	assert.Equal(t, "refused", down.Details)

	degraded := ResultFromError("db", context.DeadlineExceeded, time.Millisecond)
	assert.Equal(t, StatusDegraded, degraded.Status)
}

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := runCheck(context.Background(), Database(db, time.Second))
	assert.Equal(t, StatusUp, result.Status)

	result = runCheck(context.Background(), Database(nil, time.Second))
	assert.Equal(t, StatusDown, result.Status)
}

func TestCacheCheck(t *testing.T) {
	result := runCheck(context.Background(), Cache(cache.NewMemoryStore(), time.Second))
	assert.Equal(t, StatusUp, result.Status)

	result = runCheck(context.Background(), Cache(nil, time.Second))
	assert.Equal(t, StatusDown, result.Status)
}

func TestForecastAPICheck(t *testing.T) {
	result := runCheck(context.Background(), ForecastAPI("https://api.water.example.com/v1"))
	assert.Equal(t, StatusUp, result.Status)

	result = runCheck(context.Background(), ForecastAPI("  "))
	assert.Equal(t, StatusDown, result.Status)
}

func TestSchedulerStateCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	state, err := monitor.NewRunStateStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	// No run recorded yet passes the probe.
	result := runCheck(ctx, SchedulerState(state, time.Hour))
	assert.Equal(t, StatusUp, result.Status)
	assert.Equal(t, "pending first run", result.Details)

	// A recent healthy run is up.
	require.NoError(t, state.RecordRun(ctx, time.Now().UTC().Add(-5*time.Minute), monitor.StatusOK))
	result = runCheck(ctx, SchedulerState(state, time.Hour))
	assert.Equal(t, StatusUp, result.Status)

	// A stale run degrades readiness.
	require.NoError(t, state.RecordRun(ctx, time.Now().UTC().Add(-3*time.Hour), monitor.StatusOK))
	result = runCheck(ctx, SchedulerState(state, time.Hour))
	assert.Equal(t, StatusDegraded, result.Status)

	// A recent run that errored degrades readiness.
	require.NoError(t, state.RecordRun(ctx, time.Now().UTC().Add(-5*time.Minute), monitor.StatusError))
	result = runCheck(ctx, SchedulerState(state, time.Hour))
	assert.Equal(t, StatusDegraded, result.Status)

	result = runCheck(ctx, SchedulerState(nil, time.Hour))
	assert.Equal(t, StatusDegraded, result.Status)
}
