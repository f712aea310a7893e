package harvest

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delay is a uniformly random pause between Min and Max.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// Fixed returns a Delay that always lasts d.
func Fixed(d time.Duration) Delay {
	return Delay{Min: d, Max: d}
}

// Pick returns a duration in [Min, Max].
func (d Delay) Pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}

// Pauser waits between outbound requests.
type Pauser interface {
	// Pause blocks for a duration picked from d.
	// Returns the context error if the context is canceled first.
	Pause(ctx context.Context, d Delay) error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
