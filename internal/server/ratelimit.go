package server

import (
	"sync"
	"time"
)

// rateLimiter tracks per-client request counts over a UTC day. Counts reset
// at midnight UTC, matching the upstream quota windows the fetchers live
// under.
type rateLimiter struct {
	limit int

	mu     sync.Mutex
	day    string
	counts map[string]int
	now    func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// allow records one request for the client and reports whether it is within
// quota, how many requests remain, and the time until the window resets.
func (rl *rateLimiter) allow(client string) (bool, int, time.Duration) {
	if rl.limit <= 0 {
		return true, -1, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now().UTC()
	day := now.Format("2006-01-02")
	if day != rl.day {
		rl.day = day
		rl.counts = make(map[string]int)
	}

	reset := now.Truncate(24 * time.Hour).Add(24 * time.Hour).Sub(now)

	if rl.counts[client] >= rl.limit {
		return false, 0, reset
	}
	rl.counts[client]++
	return true, rl.limit - rl.counts[client], reset
}
