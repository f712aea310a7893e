package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/harvest"
)

// Dependencies holds the services and writers shared by all commands.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Pauser harvest.Pauser
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Run   RunCmd   `cmd:"" help:"Harvest every task not yet in the ledger"`
	Tasks TasksCmd `cmd:"" help:"Validate a task list and show which rows are done"`
	Prune PruneCmd `cmd:"" help:"Remove articles published before a year"`
}

// LedgerFlags select where completed URLs are recorded.
type LedgerFlags struct {
	Ledger        string `help:"Ledger path (default crawl_progress.json, or crawl_progress.db for sqlite)" env:"HARVEST_LEDGER"`
	LedgerBackend string `name:"ledger-backend" enum:"json,sqlite" default:"json" help:"Ledger storage (json|sqlite)" env:"HARVEST_LEDGER_BACKEND"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	TasksFile string `arg:"" name:"tasks-file" help:"Task list (.xlsx or .csv)"`
	Sheet     string `help:"Worksheet name (default first sheet)" env:"HARVEST_SHEET"`
	Out       string `short:"o" default:"." help:"Directory holding texts/, images/ and videos/" env:"HARVEST_OUT"`

	LedgerFlags `embed:""`

	Extractor      string        `enum:"heuristic,trafilatura,readability" default:"heuristic" help:"Article body extractor (heuristic|trafilatura|readability)" env:"HARVEST_EXTRACTOR"`
	Timeout        time.Duration `default:"10s" help:"Page and image request timeout" env:"HARVEST_TIMEOUT"`
	StreamTimeout  time.Duration `name:"stream-timeout" default:"30s" help:"Video response timeout" env:"HARVEST_STREAM_TIMEOUT"`
	UserAgent      string        `name:"user-agent" help:"User-Agent header" env:"HARVEST_USER_AGENT"`
	AcceptLanguage string        `name:"accept-language" help:"Accept-Language header" env:"HARVEST_ACCEPT_LANGUAGE"`
	MinWidth       int           `name:"min-width" default:"300" help:"Minimum image width in pixels" env:"HARVEST_MIN_WIDTH"`
	MinHeight      int           `name:"min-height" default:"200" help:"Minimum image height in pixels" env:"HARVEST_MIN_HEIGHT"`
	RPS            float64       `name:"rps" default:"0" help:"Per-host request limit, 0 for none" env:"HARVEST_RPS"`
	NoDelay        bool          `name:"no-delay" help:"Disable politeness delays and cooldowns" env:"HARVEST_NO_DELAY"`
	PageRetries    int           `name:"page-retries" default:"0" help:"Page fetch retries on network errors within a run" env:"HARVEST_PAGE_RETRIES"`
	LogFile        string        `name:"log-file" default:"crawler.log" help:"Log file, empty for stderr only" env:"HARVEST_LOG_FILE"`
	Verbose        bool          `short:"v" help:"Log requests and media at debug level" env:"HARVEST_VERBOSE"`
}

// TasksCmd is the "tasks" subcommand.
type TasksCmd struct {
	TasksFile string `arg:"" name:"tasks-file" help:"Task list (.xlsx or .csv)"`
	Sheet     string `help:"Worksheet name (default first sheet)" env:"HARVEST_SHEET"`
	Limit     int    `short:"n" default:"10" help:"Rows to show"`

	LedgerFlags `embed:""`
}

// PruneCmd is the "prune" subcommand.
type PruneCmd struct {
	Before int    `required:"" help:"Remove articles dated before this year"`
	Out    string `short:"o" default:"." help:"Directory holding texts/, images/ and videos/" env:"HARVEST_OUT"`
	DryRun bool   `name:"dry-run" help:"List what would be removed without deleting"`
}
