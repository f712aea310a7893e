// Package slog decorates harvest services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingFetcher implements harvest.Fetcher.
var _ harvest.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging of every request.
type LoggingFetcher struct {
	next   harvest.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next harvest.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs url, status, size and duration.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *harvest.Response, err error) {
	defer func(begin time.Time) {
		var status, size int
		if resp != nil {
			status, size = resp.StatusCode, len(resp.Body)
		}
		f.logger.Log(ctx, level(slog.LevelDebug, err), "fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Stream delegates to the wrapped fetcher and logs the response headers.
func (f *LoggingFetcher) Stream(ctx context.Context, url string) (stream *harvest.Stream, err error) {
	defer func(begin time.Time) {
		var status int
		var contentType string
		if stream != nil {
			status, contentType = stream.StatusCode, stream.ContentType
		}
		f.logger.Log(ctx, level(slog.LevelDebug, err), "stream",
			"url", url,
			"status", status,
			"content_type", contentType,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Stream(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// level raises ok to Warn when err is set.
func level(ok slog.Level, err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return ok
}
