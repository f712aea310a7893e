package harvest

import (
	"context"
	"io"
)

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Stream is an HTTP response whose body has not been read yet.
// The caller must close Body.
type Stream struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
}

// Fetcher issues HTTP GET requests. It applies no retry policy; retries
// belong to the crawl orchestrator.
type Fetcher interface {
	// Fetch retrieves the URL and reads the whole body.
	// Returns ENETWORK on timeout, connection failure or non-2xx status.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Stream retrieves the URL for a streamed download, used for video files.
	// Returns ENETWORK on timeout, connection failure or non-2xx status.
	Stream(ctx context.Context, url string) (*Stream, error)

	// Close releases idle connections.
	Close() error
}
