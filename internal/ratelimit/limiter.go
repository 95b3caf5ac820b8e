// Package ratelimit throttles ledger traffic with a global limit plus
// per-operation buckets.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"solmarket/pkg/core"
)

// Limiter provides a global rate limit with per-operation buckets created
// on demand. It is safe for concurrent use.
type Limiter struct {
	global   *rate.Limiter
	mu       sync.Mutex
	buckets  map[core.Operation]*rate.Limiter
	requests int
	period   time.Duration

	allowed atomic.Int64
	denied  atomic.Int64
}

// New creates a Limiter allowing the given number of requests per period.
func New(requests int, period time.Duration) *Limiter {
	return &Limiter{
		global:   rate.NewLimiter(perSecond(requests, period), requests),
		buckets:  make(map[core.Operation]*rate.Limiter),
		requests: requests,
		period:   period,
	}
}

func perSecond(requests int, period time.Duration) rate.Limit {
	return rate.Limit(float64(requests) / period.Seconds())
}

// Wait blocks until the global limiter admits a request or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.global.Wait(ctx); err != nil {
		l.denied.Add(1)
		return err
	}
	l.allowed.Add(1)
	return nil
}

// WaitOp blocks on both the global limiter and the operation's bucket.
func (l *Limiter) WaitOp(ctx context.Context, op core.Operation) error {
	if err := l.bucket(op).Wait(ctx); err != nil {
		l.denied.Add(1)
		return err
	}
	return l.Wait(ctx)
}

// Allow reports whether the global limiter admits a request immediately.
func (l *Limiter) Allow() bool {
	if l.global.Allow() {
		l.allowed.Add(1)
		return true
	}
	l.denied.Add(1)
	return false
}

func (l *Limiter) bucket(op core.Operation) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[op]
	if !ok {
		b = rate.NewLimiter(perSecond(l.requests, l.period), l.requests)
		l.buckets[op] = b
	}
	return b
}

// SetOpLimit overrides the limit for one operation's bucket.
func (l *Limiter) SetOpLimit(op core.Operation, requests int, period time.Duration) {
	b := l.bucket(op)
	b.SetLimit(perSecond(requests, period))
	b.SetBurst(requests)
}

// Stats is a point-in-time capture of limiter counters.
type Stats struct {
	// Allowed is the number of admitted requests.
	Allowed int64
	// Denied is the number of requests denied or cancelled while waiting.
	Denied int64
}

// Stats returns a snapshot of the limiter counters.
func (l *Limiter) Stats() Stats {
	return Stats{
		Allowed: l.allowed.Load(),
		Denied:  l.denied.Load(),
	}
}
