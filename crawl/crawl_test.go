package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// fakes wires a Crawler whose collaborators succeed by default and record
// what happened.
type fakes struct {
	fetched   []string
	written   []*harvest.Article
	committed map[string]bool
	pauses    []harvest.Delay

	fetchErr   map[string]error
	harvestErr error
	writeErr   error
	commitErr  error
	container  *html.Node
	scopes     []*html.Node
}

func newFakes() *fakes {
	return &fakes{committed: map[string]bool{}, fetchErr: map[string]error{}}
}

var (
	docNode       = &html.Node{Type: html.DocumentNode}
	containerNode = &html.Node{Type: html.ElementNode, Data: "article"}
)

func (f *fakes) crawler() *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*harvest.Response, error) {
				f.fetched = append(f.fetched, url)
				if err := f.fetchErr[url]; err != nil {
					return nil, err
				}
				return &harvest.Response{URL: url, StatusCode: 200, Body: []byte("<html></html>")}, nil
			},
		},
		Parser: &mock.Parser{
			ParseFn: func(_ *harvest.Response) (*html.Node, error) { return docNode, nil },
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(_ *html.Node) (*harvest.Extraction, error) {
				return &harvest.Extraction{
					Paragraphs: []string{"Hello world", "Second paragraph"},
					Container:  f.container,
					Strategy:   harvest.StrategySelector,
				}, nil
			},
		},
		Harvester: &mock.Harvester{
			HarvestImagesFn: func(_ context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error) {
				f.scopes = append(f.scopes, req.Scope)
				if f.harvestErr != nil {
					return nil, f.harvestErr
				}
				return []harvest.MediaAsset{{FileName: req.Title + "_1.jpg", Kind: harvest.MediaImage, Width: 400, Height: 300}}, nil
			},
			HarvestVideosFn: func(_ context.Context, _ harvest.MediaRequest) ([]harvest.MediaAsset, error) {
				return nil, nil
			},
		},
		Writer: &mock.ArticleWriter{
			WriteArticleFn: func(_ context.Context, a *harvest.Article) error {
				if f.writeErr != nil {
					return f.writeErr
				}
				f.written = append(f.written, a)
				return nil
			},
		},
		Ledger: &mock.Ledger{
			ContainsFn: func(url string) bool { return f.committed[url] },
			CommitFn: func(_ context.Context, url string) error {
				if f.commitErr != nil {
					return f.commitErr
				}
				f.committed[url] = true
				return nil
			},
			LenFn: func() int { return len(f.committed) },
		},
		Pauser: &mock.Pauser{
			PauseFn: func(_ context.Context, d harvest.Delay) error {
				f.pauses = append(f.pauses, d)
				return nil
			},
		},
		PageDelay:       crawl.DefaultPageDelay,
		NetworkCooldown: crawl.DefaultNetworkCooldown,
		FailureCooldown: crawl.DefaultFailureCooldown,
	}
}

func tasks(urls ...string) []harvest.Task {
	var out []harvest.Task
	for i, u := range urls {
		out = append(out, harvest.Task{Title: "Story " + string(rune('A'+i)), URL: u})
	}
	return out
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("processes tasks through the pipeline and commits them", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.container = containerNode
		var events []crawl.ProgressEvent

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a"), func(e crawl.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Total: 1, Committed: 1}, result)
		require.Len(t, f.written, 1)
		assert.Equal(t, &harvest.Article{
			Title:      "Story A",
			URL:        "https://example.com/a",
			Paragraphs: []string{"Hello world", "Second paragraph"},
			Images:     []harvest.MediaAsset{{FileName: "Story A_1.jpg", Kind: harvest.MediaImage, Width: 400, Height: 300}},
		}, f.written[0])
		assert.True(t, f.committed["https://example.com/a"])
		assert.Same(t, containerNode, f.scopes[0])

		var states []crawl.State
		for _, e := range events {
			if e.Type == crawl.ProgressState {
				states = append(states, e.State)
			}
		}
		assert.Equal(t, []crawl.State{crawl.StateFetching, crawl.StateExtracting, crawl.StateHarvesting, crawl.StateWriting}, states)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		last := events[len(events)-1]
		assert.Equal(t, crawl.ProgressFinished, last.Type)
		committed := events[len(events)-2]
		assert.Equal(t, crawl.ProgressCommitted, committed.Type)
		assert.Equal(t, 2, committed.Paragraphs)
		assert.Equal(t, 1, committed.Images)
		assert.Equal(t, harvest.StrategySelector, committed.Strategy)
	})

	t.Run("skips tasks already in the ledger without fetching", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.committed["https://example.com/a"] = true

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a", "https://example.com/b"), nil)

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Total: 2, Skipped: 1, Committed: 1}, result)
		assert.Equal(t, []string{"https://example.com/b"}, f.fetched)
	})

	t.Run("skips tasks whose URL is not http", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		var skipped []crawl.ProgressEvent

		result, err := f.crawler().Run(context.Background(), []harvest.Task{{Title: "Mail", URL: "mailto:a@example.com"}}, func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressSkipped {
				skipped = append(skipped, e)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		require.Len(t, skipped, 1)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(skipped[0].Error))
		assert.Empty(t, f.fetched)
	})

	t.Run("falls back to the whole document for media", func(t *testing.T) {
		t.Parallel()

		f := newFakes()

		_, err := f.crawler().Run(context.Background(), tasks("https://example.com/a"), nil)

		require.NoError(t, err)
		assert.Same(t, docNode, f.scopes[0])
	})

	t.Run("applies the page delay between committed tasks only", func(t *testing.T) {
		t.Parallel()

		f := newFakes()

		_, err := f.crawler().Run(context.Background(), tasks("https://example.com/a", "https://example.com/b"), nil)

		require.NoError(t, err)
		assert.Equal(t, []harvest.Delay{crawl.DefaultPageDelay}, f.pauses)
	})

	t.Run("network failures cool down longer and are not committed", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.fetchErr["https://example.com/a"] = harvest.Errorf(harvest.ENETWORK, "HTTP 503 for https://example.com/a")
		var failed []crawl.ProgressEvent

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a", "https://example.com/b"), func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, &crawl.Result{Total: 2, Committed: 1, Failed: 1}, result)
		assert.False(t, f.committed["https://example.com/a"])
		assert.True(t, f.committed["https://example.com/b"])
		assert.Equal(t, []harvest.Delay{crawl.DefaultNetworkCooldown}, f.pauses)
		require.Len(t, failed, 1)
		assert.Equal(t, crawl.StateFetching, failed[0].State)
		assert.Equal(t, harvest.ENETWORK, harvest.ErrorCode(failed[0].Error))
	})

	t.Run("other failures use the shorter cooldown", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.writeErr = harvest.Errorf(harvest.EFILESYSTEM, "disk full")
		var failed []crawl.ProgressEvent

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a", "https://example.com/b"), func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Failed)
		assert.Empty(t, f.committed)
		assert.Equal(t, []harvest.Delay{crawl.DefaultFailureCooldown}, f.pauses)
		require.Len(t, failed, 2)
		assert.Equal(t, crawl.StateWriting, failed[0].State)
	})

	t.Run("harvest failures abort the task", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.harvestErr = harvest.Errorf(harvest.EFILESYSTEM, "read-only filesystem")
		var failed []crawl.ProgressEvent

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a"), func(e crawl.ProgressEvent) {
			if e.Type == crawl.ProgressFailed {
				failed = append(failed, e)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Empty(t, f.written)
		require.Len(t, failed, 1)
		assert.Equal(t, crawl.StateHarvesting, failed[0].State)
	})

	t.Run("commit failures leave the task pending", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		f.commitErr = harvest.Errorf(harvest.EFILESYSTEM, "ledger unwritable")

		result, err := f.crawler().Run(context.Background(), tasks("https://example.com/a"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, f.written, 1)
	})

	t.Run("stops between steps when canceled", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		ctx, cancel := context.WithCancel(context.Background())
		c := f.crawler()
		c.Writer = &mock.ArticleWriter{
			WriteArticleFn: func(_ context.Context, _ *harvest.Article) error {
				cancel()
				return nil
			},
		}

		result, err := c.Run(ctx, tasks("https://example.com/a", "https://example.com/b"), nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, f.committed)
		assert.Equal(t, 0, result.Committed)
		assert.Equal(t, []string{"https://example.com/a"}, f.fetched)
	})

	t.Run("retries network failures within the run when configured", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		attempts := 0
		c := f.crawler()
		c.RetryDelays = []harvest.Delay{harvest.Fixed(0), harvest.Fixed(0)}
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*harvest.Response, error) {
				attempts++
				if attempts < 3 {
					return nil, harvest.Errorf(harvest.ENETWORK, "connection reset")
				}
				return &harvest.Response{URL: url, Body: []byte("<html></html>")}, nil
			},
		}

		result, err := c.Run(context.Background(), tasks("https://example.com/a"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Committed)
		assert.Equal(t, 3, attempts)
	})

	t.Run("waits on the rate limiter per host", func(t *testing.T) {
		t.Parallel()

		f := newFakes()
		var hosts []string
		c := f.crawler()
		c.RateLimiter = &mock.DomainLimiter{WaitFn: func(_ context.Context, domain string) error {
			hosts = append(hosts, domain)
			return nil
		}}

		_, err := c.Run(context.Background(), tasks("https://news.example.com/a"), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"news.example.com"}, hosts)
	})
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("does not retry non-network errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", func(_ context.Context, _ string) (*harvest.Response, error) {
			calls++
			return nil, harvest.Errorf(harvest.EINVALID, "bad request")
		}, nil, []harvest.Delay{harvest.Fixed(0)})

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("returns the last error after exhausting delays", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", func(_ context.Context, _ string) (*harvest.Response, error) {
			calls++
			return nil, harvest.Errorf(harvest.ENETWORK, "attempt %d", calls)
		}, nil, []harvest.Delay{harvest.Fixed(0), harvest.Fixed(0)})

		assert.Equal(t, "attempt 3", harvest.ErrorMessage(err))
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when the pause is canceled", func(t *testing.T) {
		t.Parallel()

		pauser := &mock.Pauser{PauseFn: func(_ context.Context, _ harvest.Delay) error {
			return context.Canceled
		}}
		_, err := crawl.FetchWithRetry(context.Background(), "https://example.com", func(_ context.Context, _ string) (*harvest.Response, error) {
			return nil, harvest.Errorf(harvest.ENETWORK, "down")
		}, pauser, []harvest.Delay{harvest.Fixed(0)})

		assert.True(t, errors.Is(err, context.Canceled))
	})
}
