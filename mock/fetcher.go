package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of harvest.Fetcher.
type Fetcher struct {
	FetchFn  func(ctx context.Context, url string) (*harvest.Response, error)
	StreamFn func(ctx context.Context, url string) (*harvest.Stream, error)
	CloseFn  func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*harvest.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Stream(ctx context.Context, url string) (*harvest.Stream, error) {
	return f.StreamFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
