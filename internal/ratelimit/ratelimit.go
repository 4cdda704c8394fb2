// Package ratelimit provides admission control for outgoing embedding
// requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter spaces calls so that no two releases occur closer together than
// 1/requestsPerSecond. Built on a token bucket with burst 1, which gives
// strict spacing; pending waiters are released in reservation order, so
// every waiter is eventually served.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a limiter releasing at most requestsPerSecond calls per
// second. A non-positive rate falls back to one call per second.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Wait blocks until it is the caller's turn, or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// SetRequestsPerSecond changes the release rate at runtime. The new rate
// takes effect for subsequently queued waiters.
func (l *Limiter) SetRequestsPerSecond(requestsPerSecond float64) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	l.bucket.SetLimit(rate.Limit(requestsPerSecond))
}

// RequestsPerSecond returns the current release rate.
func (l *Limiter) RequestsPerSecond() float64 {
	return float64(l.bucket.Limit())
}
