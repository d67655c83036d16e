package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window per-key limiter guarding the write
// endpoints. Entries are pruned lazily once the map grows past maxEntries,
// so an address scan cannot grow it without bound.
type rateLimiter struct {
	limit      int
	window     time.Duration
	maxEntries int

	mu    sync.Mutex
	items map[string]*rateLimitEntry
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:      limit,
		window:     window,
		maxEntries: 10000,
		items:      make(map[string]*rateLimitEntry),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.items) > r.maxEntries {
		r.prune(now)
	}

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false
	}

	entry.count++
	return true
}

// prune drops entries whose window has already elapsed. Caller holds mu.
func (r *rateLimiter) prune(now time.Time) {
	for key, entry := range r.items {
		if now.Sub(entry.windowStart) > r.window {
			delete(r.items, key)
		}
	}
}
