package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/harvest"
	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/fwojciec/harvest/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneCmd(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) string {
		t.Helper()
		dir := t.TempDir()
		layout := fs.Layout{Root: dir}
		require.NoError(t, layout.Ensure())
		ctx := context.Background()
		w := fs.NewArticleWriter(layout)
		require.NoError(t, w.WriteArticle(ctx, &harvest.Article{
			Title:      "Old",
			URL:        "http://news.example.com/2010-03/02/old.htm",
			Paragraphs: []string{"Old news"},
			Images:     []harvest.MediaAsset{{FileName: "Old_1.jpg", Width: 400, Height: 300}},
		}))
		require.NoError(t, fs.NewMediaStore(layout).SaveImage(ctx, "Old_1.jpg", []byte("x")))
		require.NoError(t, w.WriteArticle(ctx, &harvest.Article{
			Title:      "New",
			URL:        "http://news.example.com/2019-03/02/new.htm",
			Paragraphs: []string{"New news"},
		}))
		return dir
	}

	t.Run("removes old articles and their media", func(t *testing.T) {
		t.Parallel()

		dir := setup(t)

		var stdout, stderr bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"prune", "--before", "2015", "--out", dir}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Removed Old.txt (2010-03-02, 1 media)")
		assert.Contains(t, stdout.String(), "Removed 1 articles dated before 2015")
		assert.NoFileExists(t, filepath.Join(dir, "texts", "Old.txt"))
		assert.NoFileExists(t, filepath.Join(dir, "images", "Old_1.jpg"))
		assert.FileExists(t, filepath.Join(dir, "texts", "New.txt"))
	})

	t.Run("dry run keeps files", func(t *testing.T) {
		t.Parallel()

		dir := setup(t)

		var stdout, stderr bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"prune", "--before", "2015", "--out", dir, "--dry-run"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Would remove Old.txt")
		assert.FileExists(t, filepath.Join(dir, "texts", "Old.txt"))
	})
}
