package http

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/fwojciec/harvest"
)

// idleBody cancels the request behind a streamed body when no Read returns
// data within timeout. Each Read that makes progress re-arms the deadline.
type idleBody struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	timeout time.Duration
	url     string
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc, url string) *idleBody {
	b := &idleBody{body: body, cancel: cancel, timeout: timeout, url: url}
	if timeout > 0 {
		b.timer = time.AfterFunc(timeout, b.expire)
	}
	return b
}

func (b *idleBody) expire() {
	b.expired.Store(true)
	b.cancel()
}

func (b *idleBody) Read(p []byte) (int, error) {
	if b.expired.Load() {
		return 0, b.stalled()
	}
	n, err := b.body.Read(p)
	if b.expired.Load() {
		return n, b.stalled()
	}
	if n > 0 && b.timer != nil {
		b.timer.Reset(b.timeout)
	}
	return n, err
}

func (b *idleBody) stalled() error {
	return harvest.Errorf(harvest.ENETWORK, "stream %s stalled for %s", b.url, b.timeout)
}

// Close stops the deadline, closes the body and releases the request context.
func (b *idleBody) Close() error {
	if b.timer != nil {
		b.timer.Stop()
	}
	err := b.body.Close()
	b.cancel()
	return err
}
