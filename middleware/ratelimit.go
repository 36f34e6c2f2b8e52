// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/quickly-rank/auth"
	"github.com/danielhkuo/quickly-rank/metrics"
)

// idleTTL is how long an untouched client bucket is kept.
const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per client. Clients are keyed by a salted
// hash of their IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	salt     string
	metrics  *metrics.Metrics
	now      func() time.Time
	lastGC   time.Time
}

// NewRateLimiter allows perSecond requests with bursts of burst per client.
func NewRateLimiter(perSecond float64, burst int, salt string, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		salt:     salt,
		metrics:  m,
		now:      time.Now,
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastGC) > idleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastGC = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Limit rejects requests over the client's budget with 429.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(auth.HashIP(GetClientIP(r), rl.salt)) {
			rl.metrics.RateLimited()
			w.Header().Set("Retry-After", "1")
			ErrorResponse(w, http.StatusTooManyRequests, "Too many votes, slow down")
			return
		}
		next(w, r)
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
