package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var (
	_ harvest.Pauser        = (*Pauser)(nil)
	_ harvest.DomainLimiter = (*DomainLimiter)(nil)
)

// Pauser is a mock implementation of harvest.Pauser.
type Pauser struct {
	PauseFn func(ctx context.Context, d harvest.Delay) error
}

func (p *Pauser) Pause(ctx context.Context, d harvest.Delay) error {
	return p.PauseFn(ctx, d)
}

// DomainLimiter is a mock implementation of harvest.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
