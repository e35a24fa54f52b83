package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/riverwatchhq/riverwatch/internal/cache"
)

// RateStore counts hits against a key inside a fixed window and reports how
// long until the window resets.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

const memoryStorePruneEvery = time.Minute

// memoryRateStore keeps counters in process memory. Expired windows are
// pruned opportunistically on the write path, so the store needs no
// background goroutine.
type memoryRateStore struct {
	mu        sync.Mutex
	counters  map[string]windowCounter
	nextPrune time.Time
}

type windowCounter struct {
	hits     int
	resetsAt time.Time
}

// NewMemoryRateStore builds a process-local RateStore. Counters are not
// shared across instances; use NewCacheRateStore for that.
func NewMemoryRateStore() RateStore {
	return &memoryRateStore{counters: make(map[string]windowCounter)}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.After(s.nextPrune) {
		s.prune(now)
		s.nextPrune = now.Add(memoryStorePruneEvery)
	}

	counter := s.counters[key]
	if counter.hits == 0 || now.After(counter.resetsAt) {
		counter = windowCounter{resetsAt: now.Add(window)}
	}
	counter.hits++
	s.counters[key] = counter

	return counter.hits, counter.resetsAt.Sub(now), nil
}

// prune drops counters whose window has ended. Callers hold mu.
func (s *memoryRateStore) prune(now time.Time) {
	for key, counter := range s.counters {
		if now.After(counter.resetsAt) {
			delete(s.counters, key)
		}
	}
}

// cacheRateStore delegates counting to a shared cache.Store so multiple
// instances converge on the same counters.
type cacheRateStore struct {
	store cache.Store
}

// NewCacheRateStore adapts a cache store into a RateStore. A nil store yields
// a nil RateStore, which disables rate limiting.
func NewCacheRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &cacheRateStore{store: store}
}

func (s *cacheRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
