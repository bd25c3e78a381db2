// Package ratelimit throttles the convert endpoint per client address.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// Limiter hands each client key its own token bucket. Buckets that have
// not been seen for idleTTL are dropped during a periodic sweep so a churn
// of one-shot clients cannot grow the map without bound. A nil *Limiter
// allows every request, which is how the daemon models "rate limiting
// disabled".
type Limiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	clients   map[string]*client
	idleTTL   time.Duration
	nextSweep time.Time
}

type client struct {
	bucket *rate.Limiter
	seen   time.Time
}

// New returns a limiter granting rps tokens per second with the given
// burst. Non-positive rps or burst means limiting is off and nil is
// returned.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*client),
		idleTTL: idleTTL,
	}
}

// Allow reports whether the key may proceed at now. Blank keys are not
// limited; the caller could not attribute the request to a client.
func (l *Limiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now

	if now.After(l.nextSweep) {
		l.sweepLocked(now)
		l.nextSweep = now.Add(l.idleTTL)
	}

	return c.bucket.AllowN(now, 1)
}

func (l *Limiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for key, c := range l.clients {
		if c.seen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
