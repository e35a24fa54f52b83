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

const (
	defaultThresholdFreshness  = 7 * 24 * time.Hour
	defaultThresholdStaleGrace = 28 * 24 * time.Hour
)

// ThresholdFetcher fetches return-period thresholds from the upstream API.
type ThresholdFetcher interface {
	GetReturnPeriods(ctx context.Context, stationID string) (*models.ThresholdSet, error)
}

// ThresholdProvider serves return-period thresholds through a cache.
// Thresholds change rarely, so unlike forecasts a stale copy is still useful:
// when a refresh fails, a cached set within the stale grace window is served
// instead of failing the station.
type ThresholdProvider struct {
	store      cache.Store
	fetcher    ThresholdFetcher
	freshFor   time.Duration
	staleGrace time.Duration
	clock      clockwork.Clock
	log        *zap.Logger
}

// ThresholdOption customises the ThresholdProvider.
type ThresholdOption func(*ThresholdProvider)

// WithThresholdFreshness overrides how long a cached set stays fresh.
func WithThresholdFreshness(d time.Duration) ThresholdOption {
	return func(p *ThresholdProvider) {
		if d > 0 {
			p.freshFor = d
		}
	}
}

// WithThresholdStaleGrace overrides how old a cached set may be and still be
// served when the upstream refresh fails.
func WithThresholdStaleGrace(d time.Duration) ThresholdOption {
	return func(p *ThresholdProvider) {
		if d > 0 {
			p.staleGrace = d
		}
	}
}

// WithThresholdClock overrides the time source, primarily for testing.
func WithThresholdClock(clock clockwork.Clock) ThresholdOption {
	return func(p *ThresholdProvider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// NewThresholdProvider constructs a read-through threshold cache.
func NewThresholdProvider(store cache.Store, fetcher ThresholdFetcher, opts ...ThresholdOption) (*ThresholdProvider, error) {
	if store == nil {
		return nil, errors.New("threshold provider: cache store is required")
	}
	if fetcher == nil {
		return nil, errors.New("threshold provider: fetcher is required")
	}

	provider := &ThresholdProvider{
		store:      store,
		fetcher:    fetcher,
		freshFor:   defaultThresholdFreshness,
		staleGrace: defaultThresholdStaleGrace,
		clock:      clockwork.NewRealClock(),
		log:        logger.WithModule("providers"),
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.staleGrace < provider.freshFor {
		provider.staleGrace = provider.freshFor
	}
	return provider, nil
}

type thresholdEnvelope struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Set       *models.ThresholdSet `json:"set"`
}

func thresholdKey(stationID string) string {
	return fmt.Sprintf("thresholds:%s", stationID)
}

// Thresholds returns the station's return-period set, fetching from the
// upstream API when the cached copy is missing or past its freshness window.
// A failed refresh falls back to the most recent cached copy within the
// stale grace period before surfacing the fetch error.
func (p *ThresholdProvider) Thresholds(ctx context.Context, stationID string) (*models.ThresholdSet, error) {
	key := thresholdKey(stationID)

	env, cached := p.cached(ctx, key)
	if cached && p.clock.Since(env.FetchedAt) < p.freshFor {
		metrics.CacheLookups.WithLabelValues("thresholds", "hit").Inc()
		return env.Set, nil
	}
	metrics.CacheLookups.WithLabelValues("thresholds", "miss").Inc()

	set, err := p.fetcher.GetReturnPeriods(ctx, stationID)
	if err != nil {
		if cached && p.clock.Since(env.FetchedAt) < p.staleGrace {
			metrics.CacheLookups.WithLabelValues("thresholds", "stale").Inc()
			p.log.Warn("serving stale thresholds after refresh failure",
				zap.String("station_id", stationID),
				zap.Time("fetched_at", env.FetchedAt),
				zap.Error(err))
			return env.Set, nil
		}
		return nil, fmt.Errorf("threshold provider: %s: %w", stationID, err)
	}

	fresh := thresholdEnvelope{FetchedAt: p.clock.Now().UTC(), Set: set}
	if raw, err := json.Marshal(fresh); err == nil {
		if err := p.store.Set(ctx, key, raw, p.staleGrace); err != nil {
			p.log.Warn("storing thresholds in cache failed",
				zap.String("station_id", stationID),
				zap.Error(err))
		}
	}
	return set, nil
}

func (p *ThresholdProvider) cached(ctx context.Context, key string) (thresholdEnvelope, bool) {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("threshold cache lookup failed", zap.String("key", key), zap.Error(err))
		return thresholdEnvelope{}, false
	}
	if !ok {
		return thresholdEnvelope{}, false
	}

	var env thresholdEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Set == nil {
		p.log.Warn("threshold cache payload corrupt", zap.String("key", key))
		return thresholdEnvelope{}, false
	}
	return env, true
}
