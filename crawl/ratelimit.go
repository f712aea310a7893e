package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/harvest"
	"golang.org/x/time/rate"
)

var _ harvest.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter holds one token bucket per host so page and media requests
// to a site stay under a fixed rate even with the random delays disabled.
type DomainLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter allows rps requests per second to each host, without
// bursting. A non-positive rps never blocks.
func NewDomainLimiter(rps float64) *DomainLimiter {
	d := &DomainLimiter{
		limit:   rate.Limit(rps),
		buckets: make(map[string]*rate.Limiter),
	}
	if rps <= 0 {
		d.limit = rate.Inf
	}
	return d
}

// Wait blocks until a request to host is allowed or ctx is done. Host names
// are compared case-insensitively.
func (d *DomainLimiter) Wait(ctx context.Context, host string) error {
	return d.bucket(strings.ToLower(host)).Wait(ctx)
}

func (d *DomainLimiter) bucket(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[host]
	if !ok {
		b = rate.NewLimiter(d.limit, 1)
		d.buckets[host] = b
	}
	return b
}
