package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
)

// Run executes the tasks command.
func (c *TasksCmd) Run(deps *Dependencies) error {
	source, err := openTaskSource(c.TasksFile, c.Sheet)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	table, err := source.LoadTasks(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	ledger, err := openLedger(deps.Ctx, c.LedgerFlags)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	defer ledger.Close()

	done := 0
	for _, t := range table.Tasks {
		if ledger.Contains(t.URL) {
			done++
		}
	}

	fmt.Fprintf(deps.Stdout, "Title column: %s\n", table.TitleColumn)
	fmt.Fprintf(deps.Stdout, "URL column:   %s\n", table.URLColumn)
	fmt.Fprintf(deps.Stdout, "Valid tasks:  %d (%d done, %d pending)\n", len(table.Tasks), done, len(table.Tasks)-done)
	fmt.Fprintf(deps.Stdout, "Skipped rows: %d\n", len(table.Skipped))
	for _, s := range table.Skipped {
		fmt.Fprintf(deps.Stdout, "  row %d: %s\n", s.Row, s.Reason)
	}

	n := min(c.Limit, len(table.Tasks))
	if n > 0 {
		fmt.Fprintln(deps.Stdout)
	}
	for i, t := range table.Tasks[:n] {
		mark := " "
		if ledger.Contains(t.URL) {
			mark = "x"
		}
		fmt.Fprintf(deps.Stdout, "[%s] %d. %s  %s\n", mark, i+1, t.Title, crawl.TruncateURL(t.URL, urlDisplayLen))
	}
	return nil
}
