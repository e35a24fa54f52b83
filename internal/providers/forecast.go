package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/riverwatchhq/riverwatch/internal/cache"
	"github.com/riverwatchhq/riverwatch/internal/models"
	"github.com/riverwatchhq/riverwatch/pkg/logger"
	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

const defaultForecastFreshness = 30 * time.Minute

// ForecastFetcher fetches predicted streamflow series from the upstream API.
type ForecastFetcher interface {
	GetForecast(ctx context.Context, stationID string, fr models.ForecastRange) ([]models.ForecastPoint, error)
}

// ForecastProvider serves forecast series through a cache. Entries are
// considered fresh for a bounded window; after that the upstream is asked
// again. Forecasts are never served stale: when a refresh fails the caller
// gets the error and skips the station for this run.
type ForecastProvider struct {
	store    cache.Store
	fetcher  ForecastFetcher
	freshFor time.Duration
	clock    clockwork.Clock
	log      *zap.Logger
}

// ForecastOption customises the ForecastProvider.
type ForecastOption func(*ForecastProvider)

// WithForecastFreshness overrides how long a cached series stays fresh.
func WithForecastFreshness(d time.Duration) ForecastOption {
	return func(p *ForecastProvider) {
		if d > 0 {
			p.freshFor = d
		}
	}
}

// WithForecastClock overrides the time source, primarily for testing.
func WithForecastClock(clock clockwork.Clock) ForecastOption {
	return func(p *ForecastProvider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewForecastProvider constructs a read-through forecast cache.
func NewForecastProvider(store cache.Store, fetcher ForecastFetcher, opts ...ForecastOption) (*ForecastProvider, error) {
	if store == nil {
		return nil, errors.New("forecast provider: cache store is required")
	}
	if fetcher == nil {
		return nil, errors.New("forecast provider: fetcher is required")
	}

	provider := &ForecastProvider{
		store:    store,
		fetcher:  fetcher,
		freshFor: defaultForecastFreshness,
		clock:    clockwork.NewRealClock(),
		log:      logger.WithModule("providers"),
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider, nil
}

type forecastEnvelope struct {
	FetchedAt time.Time              `json:"fetched_at"`
	Points    []models.ForecastPoint `json:"points"`
}

func forecastKey(stationID string, fr models.ForecastRange) string {
	return fmt.Sprintf("forecast:%s:%s", stationID, fr)
}

// Series returns the forecast for a station and horizon, fetching from the
// upstream API when the cached copy is missing or older than the freshness
// window. An empty series is cached like any other result so a station with
// no forecast is not refetched on every run.
func (p *ForecastProvider) Series(ctx context.Context, stationID string, fr models.ForecastRange) ([]models.ForecastPoint, error) {
	key := forecastKey(stationID, fr)

	if env, ok := p.cached(ctx, key); ok {
		if p.clock.Since(env.FetchedAt) < p.freshFor {
			metrics.CacheLookups.WithLabelValues("forecast", "hit").Inc()
			return env.Points, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("forecast", "miss").Inc()

	points, err := p.fetcher.GetForecast(ctx, stationID, fr)
	if err != nil {
		return nil, fmt.Errorf("forecast provider: %s/%s: %w", stationID, fr, err)
	}

	env := forecastEnvelope{FetchedAt: p.clock.Now().UTC(), Points: points}
	if raw, err := json.Marshal(env); err == nil {
		if err := p.store.Set(ctx, key, raw, p.freshFor); err != nil {
			p.log.Warn("storing forecast in cache failed",
				zap.String("station_id", stationID),
				zap.Error(err))
		}
	}
	return points, nil
}

func (p *ForecastProvider) cached(ctx context.Context, key string) (forecastEnvelope, bool) {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("forecast cache lookup failed", zap.String("key", key), zap.Error(err))
		return forecastEnvelope{}, false
	}
	if !ok {
		return forecastEnvelope{}, false
	}

	var env forecastEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		p.log.Warn("forecast cache payload corrupt", zap.String("key", key), zap.Error(err))
		return forecastEnvelope{}, false
	}
	return env, true
}
