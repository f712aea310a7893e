package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var (
	_ harvest.Ledger        = (*Ledger)(nil)
	_ harvest.ArticleWriter = (*ArticleWriter)(nil)
	_ harvest.TaskSource    = (*TaskSource)(nil)
)

// Ledger is a mock implementation of harvest.Ledger.
type Ledger struct {
	ContainsFn func(url string) bool
	CommitFn   func(ctx context.Context, url string) error
	LenFn      func() int
}

func (l *Ledger) Contains(url string) bool {
	return l.ContainsFn(url)
}

func (l *Ledger) Commit(ctx context.Context, url string) error {
	return l.CommitFn(ctx, url)
}

func (l *Ledger) Len() int {
	return l.LenFn()
}

// ArticleWriter is a mock implementation of harvest.ArticleWriter.
type ArticleWriter struct {
	WriteArticleFn func(ctx context.Context, a *harvest.Article) error
}

func (w *ArticleWriter) WriteArticle(ctx context.Context, a *harvest.Article) error {
	return w.WriteArticleFn(ctx, a)
}

// TaskSource is a mock implementation of harvest.TaskSource.
type TaskSource struct {
	LoadTasksFn func(ctx context.Context) (*harvest.TaskTable, error)
}

func (s *TaskSource) LoadTasks(ctx context.Context) (*harvest.TaskTable, error) {
	return s.LoadTasksFn(ctx)
}
