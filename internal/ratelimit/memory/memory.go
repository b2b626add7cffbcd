package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AlexKimmel/windowgate/internal/ratelimit"
	window "github.com/AlexKimmel/windowgate/pkg/ratelimit"
)

var ErrClosed = errors.New("memory limiter closed")

type entry struct {
	mu     sync.Mutex
	policy ratelimit.Policy
	lim    *window.Limiter
}

type Limiter struct {
	now     func() time.Time
	entries sync.Map // key -> *entry

	closeMu sync.RWMutex
	closed  bool
}

func New() *Limiter {
	return &Limiter{
		now: time.Now,
	}
}

// WithClock replaces the time source handed to every new per-key limiter.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Close() error {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	l.closed = true
	l.entries.Range(func(k, _ any) bool {
		l.entries.Delete(k)
		return true
	})
	return nil
}

func (l *Limiter) Allow(ctx context.Context, key string, p ratelimit.Policy) (ratelimit.Decision, error) {
	if err := ctx.Err(); err != nil {
		return ratelimit.Decision{}, err
	}

	l.closeMu.RLock()
	defer l.closeMu.RUnlock()
	if l.closed {
		return ratelimit.Decision{}, ErrClosed
	}

	v, _ := l.entries.LoadOrStore(key, &entry{})
	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	// first use, or the policy for this key changed: start a fresh window
	if e.lim == nil || e.policy != p {
		e.policy = p
		e.lim = window.New(p.Capacity, p.Window).
			WithRefillPolicy(p.Refill).
			WithClock(l.now)
	}

	allowed := e.lim.Attempt()

	remaining := int(e.lim.Remaining())
	if remaining < 0 {
		remaining = 0
	}

	return ratelimit.Decision{
		Allowed:      allowed,
		Limit:        p.Capacity,
		Remaining:    remaining,
		ResetUnixSec: e.lim.ResetAt().Unix(),
	}, nil
}

// Forget drops the state kept for key.
func (l *Limiter) Forget(key string) {
	l.entries.Delete(key)
}

// Len reports how many keys currently hold state.
func (l *Limiter) Len() int {
	n := 0
	l.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
