package ratelimit

import "time"

// Limiter allows up to capacity attempts per window.
//
// A Limiter is not safe for concurrent use; wrap it in a Shared (or confine
// it to one goroutine) when several callers need it.
type Limiter struct {
	capacity    float64
	remaining   float64
	window      time.Duration
	windowStart time.Time
	policy      RefillPolicy
	now         func() time.Time
}

// New returns a full limiter using the Full refill policy.
// A capacity of zero or less is accepted and rejects every attempt.
func New(capacity int, window time.Duration) *Limiter {
	return &Limiter{
		capacity:    float64(capacity),
		remaining:   float64(capacity),
		window:      window,
		windowStart: time.Now(),
		policy:      Full,
		now:         time.Now,
	}
}

// WithRefillPolicy replaces the refill policy. Call it before the first Attempt.
func (l *Limiter) WithRefillPolicy(p RefillPolicy) *Limiter {
	l.policy = p
	return l
}

// WithClock replaces the time source and restarts the window at its current
// reading. now must return monotonic times (time.Now or values derived from it).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	l.now = now
	l.windowStart = now()
	return l
}

// Attempt refills the budget for the time elapsed since the window start and
// then tries to consume one unit of it.
func (l *Limiter) Attempt() bool {
	l.refill(l.now())

	if l.remaining < 1 {
		return false
	}
	l.remaining--
	return true
}

func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.windowStart)

	switch l.policy {
	case Gradual:
		if l.remaining == l.capacity {
			return
		}
		if elapsed > l.window {
			l.reset(now)
			return
		}
		if elapsed <= 0 {
			// nothing due; keep windowStart where it is so it never moves back
			return
		}
		due := float64(elapsed) / float64(l.window) * l.capacity
		l.windowStart = now
		l.remaining += due
		if l.remaining > l.capacity {
			l.remaining = l.capacity
		}
	default:
		if elapsed > l.window {
			l.reset(now)
		}
	}
}

func (l *Limiter) reset(now time.Time) {
	l.windowStart = now
	l.remaining = l.capacity
}

func (l *Limiter) Capacity() float64 { return l.capacity }
func (l *Limiter) Remaining() float64 { return l.remaining }
func (l *Limiter) Window() time.Duration { return l.window }
func (l *Limiter) Policy() RefillPolicy { return l.policy }
func (l *Limiter) WindowStart() time.Time { return l.windowStart }
func (l *Limiter) ResetAt() time.Time { return l.windowStart.Add(l.window) }
