package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/sitecms/sitecms/internal/cache"
)

const (
	defaultRateWindow = time.Minute
	// sweepEvery bounds how many increments pass between expired-window sweeps.
	sweepEvery = 256
)

// RateStore counts hits for a key within a fixed window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// MemoryRateStore keeps fixed-window counters in process memory. Expired
// windows are swept lazily so no background goroutine is needed.
type MemoryRateStore struct {
	mu      sync.Mutex
	windows map[string]rateWindow
	calls   int
	now     func() time.Time
}

type rateWindow struct {
	hits  int
	reset time.Time
}

// NewMemoryRateStore suits single-instance deployments and tests.
func NewMemoryRateStore() *MemoryRateStore {
	return newMemoryRateStore(time.Now)
}

func newMemoryRateStore(now func() time.Time) *MemoryRateStore {
	return &MemoryRateStore{windows: make(map[string]rateWindow), now: now}
}

func (s *MemoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = defaultRateWindow
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.calls%sweepEvery == 0 {
		s.sweep(now)
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.reset) {
		w = rateWindow{reset: now.Add(window)}
	}
	w.hits++
	s.windows[key] = w

	return w.hits, w.reset.Sub(now), nil
}

// Len reports the number of live windows.
func (s *MemoryRateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *MemoryRateStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.reset) {
			delete(s.windows, key)
		}
	}
}

// sharedRateStore shares counters across instances through a cache.Store
// (Redis or the SQL cache table).
type sharedRateStore struct {
	store cache.Store
}

// NewSharedRateStore adapts a cache.Store. It returns nil for a nil store so
// RateLimit degrades to a no-op.
func NewSharedRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return sharedRateStore{store: store}
}

func (s sharedRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = defaultRateWindow
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
