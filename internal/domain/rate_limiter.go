// Package domain contains the core business entities and value objects.
package domain

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	// DefaultRateLimit is the number of admissions allowed per key per window.
	DefaultRateLimit = 5

	// DefaultRateWindow is the trailing window length.
	DefaultRateWindow = 60 * time.Second
)

// RateLimiter is a sliding-window admission gate keyed by an opaque string.
//
// For each key it remembers the instants of admitted checks inside the trailing
// window. Old instants are evicted lazily on the next check for that key, so a
// key that goes idle keeps its slice until it is checked again. Set a key cap
// with WithMaxKeys to bound memory when origins are unbounded.
type RateLimiter struct {
	// limit is the maximum number of admissions per key inside window.
	limit int

	// window is the trailing duration that admissions are counted over.
	window time.Duration

	// now returns the current time. Replaced in tests.
	now func() time.Time

	// maxKeys caps the number of tracked keys. Zero means unbounded.
	maxKeys int

	// mu serializes every check; the read-filter-write sequence is atomic per limiter.
	mu     sync.Mutex
	stamps windowStore
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithClock injects the time source.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		if now != nil {
			rl.now = now
		}
	}
}

// WithMaxKeys bounds the number of tracked keys. When the cap is reached the
// least recently checked key is forgotten. Values <= 0 keep the limiter unbounded.
func WithMaxKeys(n int) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.maxKeys = n
	}
}

// NewRateLimiter creates a limiter admitting at most limit checks per key in
// any trailing window. Non-positive arguments fall back to the defaults.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}

	rl := &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}

	rl.stamps = newMapStore()
	if rl.maxKeys > 0 {
		// lru.New only fails for non-positive sizes.
		if cache, err := lru.New(rl.maxKeys); err == nil {
			rl.stamps = &lruStore{cache: cache}
		}
	}

	return rl
}

// Check reports whether a request for key is admitted, recording it if so.
// A denied check records nothing, so a flood of denied calls does not extend
// the lockout.
func (rl *RateLimiter) Check(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	previous := rl.stamps.get(key)

	kept := make([]time.Time, 0, len(previous)+1)
	for _, t := range previous {
		if now.Sub(t) < rl.window {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.limit {
		rl.stamps.put(key, kept)
		return false
	}

	rl.stamps.put(key, append(kept, now))
	return true
}

// TrackedKeys returns the number of keys the limiter currently holds state for.
func (rl *RateLimiter) TrackedKeys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.stamps.len()
}

// Limit returns the configured admissions per window.
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Window returns the configured window length.
func (rl *RateLimiter) Window() time.Duration {
	return rl.window
}

// windowStore holds per-key admission instants. Callers hold RateLimiter.mu.
type windowStore interface {
	get(key string) []time.Time
	put(key string, stamps []time.Time)
	len() int
}

type mapStore struct {
	m map[string][]time.Time
}

func newMapStore() *mapStore {
	return &mapStore{m: make(map[string][]time.Time)}
}

func (s *mapStore) get(key string) []time.Time { return s.m[key] }

func (s *mapStore) put(key string, stamps []time.Time) { s.m[key] = stamps }

func (s *mapStore) len() int { return len(s.m) }

type lruStore struct {
	cache *lru.Cache
}

func (s *lruStore) get(key string) []time.Time {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	return v.([]time.Time)
}

func (s *lruStore) put(key string, stamps []time.Time) { s.cache.Add(key, stamps) }

func (s *lruStore) len() int { return s.cache.Len() }
