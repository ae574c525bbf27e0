// Package throttle bounds how fast solver invocations are admitted per
// pathway (external, internal, drop-pull).
package throttle

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter lazily creates and caches a token-bucket limiter per pathway.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// New creates a Limiter whose per-pathway buckets all share the same rate
// and burst size.
func New(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      requestsPerSecond,
		burst:    burst,
	}
}

func (l *Limiter) get(pathway string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[pathway]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok := l.limiters[pathway]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[pathway] = limiter
	return limiter
}

// Wait blocks until a solver invocation for pathway is allowed to proceed.
func (l *Limiter) Wait(ctx context.Context, pathway string) error {
	return l.get(pathway).Wait(ctx)
}
