package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

var (
	_ harvest.Ledger        = (*LoggingLedger)(nil)
	_ harvest.ArticleWriter = (*LoggingArticleWriter)(nil)
)

// LoggingLedger wraps a Ledger and logs commits.
type LoggingLedger struct {
	next   harvest.Ledger
	logger *slog.Logger
}

// NewLoggingLedger creates a new LoggingLedger.
func NewLoggingLedger(next harvest.Ledger, logger *slog.Logger) *LoggingLedger {
	return &LoggingLedger{next: next, logger: logger}
}

// Contains delegates to the wrapped ledger.
func (l *LoggingLedger) Contains(url string) bool {
	return l.next.Contains(url)
}

// Len delegates to the wrapped ledger.
func (l *LoggingLedger) Len() int {
	return l.next.Len()
}

// Commit delegates to the wrapped ledger and logs the new size.
func (l *LoggingLedger) Commit(ctx context.Context, url string) (err error) {
	defer func(begin time.Time) {
		l.logger.Log(ctx, level(slog.LevelInfo, err), "commit",
			"url", url,
			"completed", l.next.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Commit(ctx, url)
}

// LoggingArticleWriter wraps an ArticleWriter and logs each article written.
type LoggingArticleWriter struct {
	next   harvest.ArticleWriter
	logger *slog.Logger
}

// NewLoggingArticleWriter creates a new LoggingArticleWriter.
func NewLoggingArticleWriter(next harvest.ArticleWriter, logger *slog.Logger) *LoggingArticleWriter {
	return &LoggingArticleWriter{next: next, logger: logger}
}

// WriteArticle delegates to the wrapped writer and logs the article shape.
func (w *LoggingArticleWriter) WriteArticle(ctx context.Context, a *harvest.Article) (err error) {
	defer func(begin time.Time) {
		w.logger.Log(ctx, level(slog.LevelInfo, err), "write article",
			"title", a.Title,
			"url", a.URL,
			"paragraphs", len(a.Paragraphs),
			"images", len(a.Images),
			"videos", len(a.Videos),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteArticle(ctx, a)
}
