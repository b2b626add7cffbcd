// Package ratelimit provides an in-memory window rate limiter.
//
// A Limiter allows a fixed number of attempts per window:
//
//	lim := ratelimit.New(3, 5*time.Second)
//	lim.Attempt() // true
//	lim.Attempt() // true
//	lim.Attempt() // true
//	lim.Attempt() // false
//
// # Refill policies
//
// Full (the default) gives nothing back until a whole window has passed since
// the window started, then restores the entire budget.
//
// Gradual gives back capacity*elapsed/window on every attempt and moves the
// window start up to that attempt. After a full window of idleness it behaves
// like Full. Refilled budget never exceeds the capacity.
//
//	lim := ratelimit.New(4, 500*time.Millisecond).WithRefillPolicy(ratelimit.Gradual)
//
// # Concurrency
//
// Limiter has no locking and never blocks; time is accounted lazily when
// Attempt is called. Use Shared when one limiter is used by several goroutines.
package ratelimit
