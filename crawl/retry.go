package crawl

import (
	"context"

	"github.com/fwojciec/harvest"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*harvest.Response, error)

// FetchWithRetry calls fetch once, then once more after each delay while
// the failure is a network error. Other errors are returned immediately.
// A nil pauser retries without waiting.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, pauser harvest.Pauser, delays []harvest.Delay) (*harvest.Response, error) {
	resp, err := fetch(ctx, url)
	for _, d := range delays {
		if err == nil || harvest.ErrorCode(err) != harvest.ENETWORK {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if pauser != nil {
			if perr := pauser.Pause(ctx, d); perr != nil {
				return nil, perr
			}
		}
		resp, err = fetch(ctx, url)
	}
	return resp, err
}
