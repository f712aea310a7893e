package harvest

import "context"

// Ledger is the durable set of completed task URLs.
// A URL, once committed, is never removed.
type Ledger interface {
	// Contains reports whether the URL was committed. Matching is exact.
	Contains(url string) bool

	// Commit records the URL as completed. It is atomic from the caller's
	// perspective: after a crash the ledger holds either the old or the
	// new set. Returns EFILESYSTEM on failure.
	Commit(ctx context.Context, url string) error

	// Len returns the number of committed URLs.
	Len() int
}
