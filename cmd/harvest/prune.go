package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/fs"
)

// Run executes the prune command.
func (c *PruneCmd) Run(deps *Dependencies) error {
	pruner := &fs.Pruner{
		Layout: fs.Layout{Root: c.Out},
		DryRun: c.DryRun,
	}

	pruned, err := pruner.Prune(deps.Ctx, c.Before)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	verb := "Removed"
	if c.DryRun {
		verb = "Would remove"
	}
	for _, p := range pruned {
		fmt.Fprintf(deps.Stdout, "%s %s (%s, %d media)\n", verb, p.File, p.Date.Format("2006-01-02"), len(p.Media))
	}
	fmt.Fprintf(deps.Stdout, "%s %d articles dated before %d\n", verb, len(pruned), c.Before)
	return nil
}
