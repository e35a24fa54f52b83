package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/riverwatchhq/riverwatch/internal/cache"
	"github.com/riverwatchhq/riverwatch/internal/monitor"
)

const (
	defaultProbeTimeout    = 2 * time.Second
	defaultSchedulerMaxAge = 2 * time.Hour
	cacheProbeKey          = "health:probe"
	cacheProbeTTL          = time.Minute
)

// Database returns a readiness probe that pings the database handle.
func Database(db *gorm.DB, timeout time.Duration) Check {
	return NewCheck("database", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if db == nil {
			return ProbeResult{
				Status:   StatusDown,
				Details:  "database not configured",
				Duration: time.Since(start),
			}
		}

		sqlDB, err := db.DB()
		if err != nil {
			return ResultFromError("database", err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultProbeTimeout))
		defer cancel()

		if err := sqlDB.PingContext(probeCtx); err != nil {
			return ResultFromError("database", err, time.Since(start))
		}

		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

// Cache returns a readiness probe that round-trips a value through the
// cache store backing the forecast providers.
func Cache(store cache.Store, timeout time.Duration) Check {
	return NewCheck("cache", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if store == nil {
			return ProbeResult{
				Status:   StatusDown,
				Details:  "cache not configured",
				Duration: time.Since(start),
			}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultProbeTimeout))
		defer cancel()

		stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano))
		if err := store.Set(probeCtx, cacheProbeKey, stamp, cacheProbeTTL); err != nil {
			return ResultFromError("cache", err, time.Since(start))
		}
		if _, _, err := store.Get(probeCtx, cacheProbeKey); err != nil {
			return ResultFromError("cache", err, time.Since(start))
		}

		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

// ForecastAPI returns a readiness probe that validates the upstream client
// configuration. It never issues live upstream calls; probes fire every few
// seconds and would count against the forecast API's rate limits.
func ForecastAPI(baseURL string) Check {
	return NewCheck("forecast_api", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if strings.TrimSpace(baseURL) == "" {
			return ProbeResult{
				Status:   StatusDown,
				Details:  "forecast API base URL not configured",
				Duration: time.Since(start),
			}
		}
		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

// SchedulerState returns a readiness probe over the persisted monitoring run
// state. A run older than maxAge degrades readiness; a pipeline that has not
// run yet reports up so fresh deployments pass their first probe.
func SchedulerState(state *monitor.RunStateStore, maxAge time.Duration) Check {
	if maxAge <= 0 {
		maxAge = defaultSchedulerMaxAge
	}

	return NewCheck("scheduler", func(ctx context.Context) ProbeResult {
		start := time.Now()
		if state == nil {
			return ProbeResult{
				Status:   StatusDegraded,
				Details:  "run state not configured",
				Duration: time.Since(start),
			}
		}

		lastRun, status, err := state.LastRun(ctx)
		if err != nil {
			return ResultFromError("scheduler", err, time.Since(start))
		}

		if lastRun.IsZero() {
			return ProbeResult{
				Status:   StatusUp,
				Details:  "pending first run",
				Duration: time.Since(start),
			}
		}

		if age := time.Since(lastRun); age > maxAge {
			return ProbeResult{
				Status:   StatusDegraded,
				Details:  fmt.Sprintf("last run %s ago", age.Round(time.Second)),
				Duration: time.Since(start),
			}
		}

		if status == monitor.StatusError {
			return ProbeResult{
				Status:   StatusDegraded,
				Details:  "last run errored",
				Duration: time.Since(start),
			}
		}

		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	})
}

func chooseTimeout(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
