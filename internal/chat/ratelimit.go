package chat

import (
	"sync"
	"time"
)

const (
	rateLimitWindow   = time.Minute
	rateLimitMessages = 10
)

type limiterKey struct {
	userID  string
	eventID string
}

// RateLimiter is a sliding-window counter keyed by (user, event). The scope
// is per room, so a user throttled in one event's chat may still post in
// another.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[limiterKey][]time.Time
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[limiterKey][]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether a new message fits the current window. It evaluates
// against now without consuming quota; Record is a separate call made only
// after the message has actually been persisted.
func (rl *RateLimiter) Allow(userID, eventID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rateLimitWindow)
	count := 0
	for _, ts := range rl.windows[limiterKey{userID, eventID}] {
		if ts.After(cutoff) {
			count++
		}
	}
	return count < rateLimitMessages
}

// Record appends a send timestamp and evicts entries older than the window.
func (rl *RateLimiter) Record(userID, eventID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	key := limiterKey{userID, eventID}
	now := rl.now()
	cutoff := now.Add(-rateLimitWindow)

	kept := rl.windows[key][:0]
	for _, ts := range rl.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	rl.windows[key] = append(kept, now)
}
