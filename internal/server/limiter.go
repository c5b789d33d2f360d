package server

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	clientExpiration = 5 * time.Minute
	cleanupInterval  = time.Minute
)

type clientState struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*clientState
}

// NewLimiter allows rps requests per second per client with the given burst.
// rps <= 0 disables limiting.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		clients: make(map[string]*clientState),
	}
}

// Enabled reports whether requests are limited at all.
func (l *Limiter) Enabled() bool {
	return l.rps > 0
}

// Allow reports whether the client identified by key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()

	l.mu.Lock()
	st, ok := l.clients[key]
	if !ok {
		st = &clientState{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = st
	}
	st.lastSeen = now
	l.mu.Unlock()

	return st.limiter.AllowN(now, 1)
}

// RetryAfter is the whole number of seconds until a drained client earns
// one token back.
func (l *Limiter) RetryAfter() int {
	if !l.Enabled() {
		return 0
	}
	return int(math.Ceil(1 / float64(l.rps)))
}

// cleanup drops clients idle for longer than clientExpiration.
func (l *Limiter) cleanup() int {
	cutoff := l.now().Add(-clientExpiration)
	removed := 0

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, st := range l.clients {
		if st.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// RunCleanup evicts idle clients every minute until ctx is done.
func (l *Limiter) RunCleanup(ctx context.Context) {
	if !l.Enabled() {
		return
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}
