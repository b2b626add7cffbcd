package ratelimit

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of a limiter's budget.
type Snapshot struct {
	Capacity  float64
	Remaining float64
	ResetAt   time.Time
	Policy    RefillPolicy
}

// Shared serializes access to a Limiter so it can be used from several goroutines.
type Shared struct {
	mu  sync.Mutex
	lim *Limiter
}

func NewShared(l *Limiter) *Shared {
	return &Shared{lim: l}
}

func (s *Shared) Attempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lim.Attempt()
}

// AttemptSnapshot attempts once and returns the state left behind by that attempt.
func (s *Shared) AttemptSnapshot() (bool, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.lim.Attempt()
	return ok, s.snapshotLocked()
}

// Snapshot does not refill; it reports the state after the last Attempt.
func (s *Shared) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Shared) snapshotLocked() Snapshot {
	return Snapshot{
		Capacity:  s.lim.capacity,
		Remaining: s.lim.remaining,
		ResetAt:   s.lim.ResetAt(),
		Policy:    s.lim.policy,
	}
}
