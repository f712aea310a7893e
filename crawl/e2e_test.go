package crawl_test

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/fs"
	"github.com/fwojciec/harvest/goquery"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Harvesting a single article end to end
// A page with an article body and one in-body photo produces a text file,
// an image file and a ledger entry, and a second run does nothing.

const storyPage = `<!DOCTYPE html>
<html><head><title>Example</title></head>
<body>
<nav><a href="/">Home</a><img src="/logo.png" width="120" height="40"></nav>
<article>
<p>Hello world</p>
<p>Second paragraph</p>
<img src="pic.jpg" width="400" height="300">
</article>
<footer><p>Copyright</p></footer>
</body></html>`

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func newPipeline(t *testing.T, root string) (*crawl.Crawler, *fs.Ledger) {
	t.Helper()

	layout := fs.Layout{Root: root}
	require.NoError(t, layout.Ensure())
	ledger, err := fs.OpenLedger(filepath.Join(root, fs.DefaultLedgerFile))
	require.NoError(t, err)

	fetcher := harvesthttp.NewFetcher()
	t.Cleanup(func() { fetcher.Close() })

	return &crawl.Crawler{
		Fetcher:   fetcher,
		Parser:    goquery.NewParser(),
		Extractor: goquery.NewExtractor(),
		Harvester: media.NewHarvester(goquery.NewMediaFinder(), fetcher, fs.NewMediaStore(layout), nil),
		Writer:    fs.NewArticleWriter(layout),
		Ledger:    ledger,
	}, ledger
}

func TestCrawler_EndToEnd(t *testing.T) {
	t.Parallel()

	// Given a site serving an article and its photo
	photo := jpegBytes(t, 400, 300)
	var pageHits, photoHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		pageHits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(storyPage))
	})
	mux.HandleFunc("/pic.jpg", func(w http.ResponseWriter, _ *http.Request) {
		photoHits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(photo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	task := harvest.Task{Title: "Test Story", URL: srv.URL + "/a"}

	// When the pipeline runs
	c, ledger := newPipeline(t, root)
	result, err := c.Run(context.Background(), []harvest.Task{task}, nil)

	// Then the task is committed
	require.NoError(t, err)
	assert.Equal(t, &crawl.Result{Total: 1, Committed: 1}, result)
	assert.True(t, ledger.Contains(task.URL))

	// And the text file holds both paragraphs and the image manifest
	text, err := os.ReadFile(filepath.Join(root, "texts", "Test Story.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Hello world\n\nSecond paragraph")
	assert.Contains(t, string(text), "1. Test Story_1.jpg - size: 400x300")
	assert.NotContains(t, string(text), "Copyright")

	// And the photo is stored, while the nav logo was never requested
	stored, err := os.ReadFile(filepath.Join(root, "images", "Test Story_1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, photo, stored)
	assert.Equal(t, int32(1), photoHits.Load())

	// When the pipeline runs again with the persisted ledger
	again, reopened := newPipeline(t, root)
	result, err = again.Run(context.Background(), []harvest.Task{task}, nil)

	// Then nothing is fetched or rewritten
	require.NoError(t, err)
	assert.Equal(t, &crawl.Result{Total: 1, Skipped: 1}, result)
	assert.Equal(t, int32(1), pageHits.Load())
	assert.Equal(t, int32(1), photoHits.Load())
	assert.Equal(t, 1, reopened.Len())
}

func TestCrawler_EndToEndPageFailure(t *testing.T) {
	t.Parallel()

	// Given a page that fails on the first run only
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><article><p>Recovered</p></article></body></html>`))
	}))
	t.Cleanup(srv.Close)

	root := t.TempDir()
	task := harvest.Task{Title: "Flaky", URL: srv.URL + "/flaky"}

	// When the first run fails
	c, ledger := newPipeline(t, root)
	result, err := c.Run(context.Background(), []harvest.Task{task}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.False(t, ledger.Contains(task.URL))
	assert.NoFileExists(t, filepath.Join(root, "texts", "Flaky.txt"))

	// Then the next run retries and commits it
	again, reopened := newPipeline(t, root)
	result, err = again.Run(context.Background(), []harvest.Task{task}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Committed)
	assert.True(t, reopened.Contains(task.URL))
	assert.FileExists(t, filepath.Join(root, "texts", "Flaky.txt"))
}
