// Package ratelimit keeps one token bucket per caller key.
package ratelimit

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Limiter hands out requests per key at a steady rate with a burst allowance.
// The least recently seen keys are evicted once maxKeys is reached.
type Limiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *lru.Cache[string, *rate.Limiter]
}

// New creates a Limiter allowing rps requests per second with the given burst
func New(rps float64, burst, maxKeys int) (*Limiter, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rate limit rps must be positive, got %v", rps)
	}
	if burst < 1 {
		return nil, fmt.Errorf("rate limit burst must be at least 1, got %d", burst)
	}
	cache, err := lru.New[string, *rate.Limiter](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter cache: %w", err)
	}
	return &Limiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: cache,
	}, nil
}

// Allow reports whether one more request for key may proceed now
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Len returns the number of keys currently tracked
func (l *Limiter) Len() int {
	return l.limiters.Len()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters.Get(key); ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(key, lim)
	return lim
}
