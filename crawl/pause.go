package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
)

var _ harvest.Pauser = (*SleepPauser)(nil)

// SleepPauser sleeps for a random duration picked from the delay.
type SleepPauser struct{}

// Pause blocks for d.Pick() or until ctx is done.
func (SleepPauser) Pause(ctx context.Context, d harvest.Delay) error {
	dur := d.Pick()
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
