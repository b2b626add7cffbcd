package ratelimit

import (
	"context"
	"time"

	window "github.com/AlexKimmel/windowgate/pkg/ratelimit"
)

type Policy struct {
	Capacity int                 // attempts per window
	Window   time.Duration       // window length
	Refill   window.RefillPolicy // full or gradual
}

type Decision struct {
	Allowed      bool
	Limit        int   // capacity per window
	Remaining    int   // whole attempts left after this one (min 0)
	ResetUnixSec int64 // end of the current window
}

// Limiter decides attempts for independent keys; keys never share budget.
type Limiter interface {
	Allow(ctx context.Context, key string, p Policy) (Decision, error)
	Close() error
}
