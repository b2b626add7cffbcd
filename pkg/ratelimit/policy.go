package ratelimit

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown refill policy")

// RefillPolicy selects how budget comes back as time passes.
type RefillPolicy int

const (
	// Full restores the whole budget once a full window has elapsed, nothing before.
	Full RefillPolicy = iota
	// Gradual trickles budget back in proportion to the time since the last refill.
	Gradual
)

func (p RefillPolicy) String() string {
	switch p {
	case Full:
		return "full"
	case Gradual:
		return "gradual"
	default:
		return fmt.Sprintf("RefillPolicy(%d)", int(p))
	}
}

func ParseRefillPolicy(s string) (RefillPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return Full, nil
	case "gradual":
		return Gradual, nil
	}
	return Full, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

func (p RefillPolicy) MarshalText() ([]byte, error) {
	if p != Full && p != Gradual {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

func (p *RefillPolicy) UnmarshalText(b []byte) error {
	v, err := ParseRefillPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
