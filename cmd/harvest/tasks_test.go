package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasksCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports columns, counts and completed rows", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		tasks := writeTasks(t, dir, "标题,网址\n"+
			"First,https://example.com/1\n"+
			"Second,https://example.com/2\n"+
			"Bad,ftp://example.com/3\n"+
			",https://example.com/4\n")
		ledger := filepath.Join(dir, "progress.json")
		require.NoError(t, os.WriteFile(ledger, []byte(`["https://example.com/1"]`), 0644))

		var stdout, stderr bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"tasks", tasks, "--ledger", ledger}, &stdout, &stderr)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Title column: 标题")
		assert.Contains(t, out, "URL column:   网址")
		assert.Contains(t, out, "Valid tasks:  2 (1 done, 1 pending)")
		assert.Contains(t, out, "Skipped rows: 2")
		assert.Contains(t, out, "[x] 1. First")
		assert.Contains(t, out, "[ ] 2. Second")
	})

	t.Run("limits the rows shown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		tasks := writeTasks(t, dir, "title,url\nFirst,https://example.com/1\nSecond,https://example.com/2\n")

		var stdout, stderr bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"tasks", tasks, "--ledger", filepath.Join(dir, "none.json"), "-n", "1"}, &stdout, &stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "1. First")
		assert.NotContains(t, stdout.String(), "2. Second")
	})

	t.Run("reports a missing task list", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		var stdout, stderr bytes.Buffer
		err := main.NewMain().Run(context.Background(),
			[]string{"tasks", filepath.Join(dir, "missing.xlsx")}, &stdout, &stderr)

		assert.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
