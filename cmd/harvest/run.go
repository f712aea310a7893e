package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/crawl"
	"github.com/fwojciec/harvest/fs"
	"github.com/fwojciec/harvest/goquery"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/fwojciec/harvest/media"
	"github.com/fwojciec/harvest/readability"
	harvestslog "github.com/fwojciec/harvest/slog"
	"github.com/fwojciec/harvest/trafilatura"
)

// urlDisplayLen is the width URLs are truncated to in progress lines.
const urlDisplayLen = 80

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	logger, closeLog, err := c.openLogger(deps.Stderr)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	defer closeLog()

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

	layout := fs.Layout{Root: c.Out}
	if err := layout.Ensure(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	ledger, err := openLedger(deps.Ctx, c.LedgerFlags)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}
	defer ledger.Close()

	logger = logger.With("run", ledger.RunID)
	logger.Info("loaded tasks",
		"file", c.TasksFile,
		"title_column", table.TitleColumn,
		"url_column", table.URLColumn,
		"tasks", len(table.Tasks),
		"skipped_rows", len(table.Skipped),
		"ledger", ledger.Path,
		"completed", ledger.Len(),
	)
	for _, s := range table.Skipped {
		logger.Debug("skipped row", "row", s.Row, "reason", s.Reason)
	}

	crawler := c.newCrawler(deps, logger, layout, ledger)
	defer crawler.Fetcher.Close()

	result, err := crawler.Run(deps.Ctx, table.Tasks, progressLogger(logger))
	if result != nil {
		fmt.Fprintf(deps.Stdout, "Done: %d tasks, %d committed, %d skipped, %d failed\n",
			result.Total, result.Committed, result.Skipped, result.Failed)
	}
	if err != nil {
		logger.Warn("run interrupted", "err", err)
		return err
	}
	return nil
}

// newCrawler wires the pipeline from flags.
func (c *RunCmd) newCrawler(deps *Dependencies, logger *slog.Logger, layout fs.Layout, ledger harvest.Ledger) *crawl.Crawler {
	opts := []harvesthttp.Option{
		harvesthttp.WithTimeout(c.Timeout),
		harvesthttp.WithStreamTimeout(c.StreamTimeout),
	}
	if c.UserAgent != "" {
		opts = append(opts, harvesthttp.WithUserAgent(c.UserAgent))
	}
	if c.AcceptLanguage != "" {
		opts = append(opts, harvesthttp.WithAcceptLanguage(c.AcceptLanguage))
	}
	fetcher := harvestslog.NewLoggingFetcher(harvesthttp.NewFetcher(opts...), logger)

	var limiter harvest.DomainLimiter
	if c.RPS > 0 {
		limiter = crawl.NewDomainLimiter(c.RPS)
	}

	var extractor harvest.Extractor = goquery.NewExtractor()
	switch c.Extractor {
	case "trafilatura":
		extractor = trafilatura.NewExtractor(extractor)
	case "readability":
		extractor = readability.NewExtractor(extractor)
	}

	harvester := media.NewHarvester(goquery.NewMediaFinder(), fetcher, fs.NewMediaStore(layout), deps.Pauser)
	harvester.MinWidth = c.MinWidth
	harvester.MinHeight = c.MinHeight
	harvester.RateLimiter = limiter

	crawler := &crawl.Crawler{
		Fetcher:         fetcher,
		Parser:          goquery.NewParser(),
		Extractor:       extractor,
		Harvester:       harvestslog.NewLoggingHarvester(harvester, logger),
		Writer:          harvestslog.NewLoggingArticleWriter(fs.NewArticleWriter(layout), logger),
		Ledger:          harvestslog.NewLoggingLedger(ledger, logger),
		Pauser:          deps.Pauser,
		RateLimiter:     limiter,
		PageDelay:       crawl.DefaultPageDelay,
		NetworkCooldown: crawl.DefaultNetworkCooldown,
		FailureCooldown: crawl.DefaultFailureCooldown,
	}
	for i := 0; i < c.PageRetries; i++ {
		crawler.RetryDelays = append(crawler.RetryDelays, crawl.DefaultNetworkCooldown)
	}

	if c.NoDelay {
		harvester.ImageDelay = harvest.Delay{}
		harvester.VideoDelay = harvest.Delay{}
		crawler.PageDelay = harvest.Delay{}
		crawler.NetworkCooldown = harvest.Delay{}
		crawler.FailureCooldown = harvest.Delay{}
		for i := range crawler.RetryDelays {
			crawler.RetryDelays[i] = harvest.Delay{}
		}
	}
	return crawler
}

// openLogger writes to stderr and, if set, appends to the log file.
func (c *RunCmd) openLogger(stderr io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}

	w, closeFn := stderr, func() {}
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, harvest.WrapError(harvest.EFILESYSTEM, err, "open log file %s", c.LogFile)
		}
		w = io.MultiWriter(stderr, f)
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// progressLogger turns crawl progress events into log lines.
func progressLogger(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		pos := fmt.Sprintf("%d/%d", e.Position, e.Total)
		url := crawl.TruncateURL(e.Task.URL, urlDisplayLen)
		switch e.Type {
		case crawl.ProgressStarted:
			logger.Info("starting", "tasks", e.Total)
		case crawl.ProgressState:
			logger.Debug("task state", "pos", pos, "state", string(e.State), "url", url)
		case crawl.ProgressSkipped:
			if e.Error != nil {
				logger.Warn("invalid task", "pos", pos, "title", e.Task.Title, "err", e.Error)
				return
			}
			logger.Info("already done", "pos", pos, "title", e.Task.Title, "url", url)
		case crawl.ProgressCommitted:
			logger.Info("saved",
				"pos", pos,
				"title", e.Task.Title,
				"url", url,
				"strategy", e.Strategy,
				"paragraphs", e.Paragraphs,
				"images", e.Images,
				"videos", e.Videos,
			)
		case crawl.ProgressFailed:
			logger.Error("failed",
				"pos", pos,
				"title", e.Task.Title,
				"url", url,
				"state", string(e.State),
				"err", e.Error,
			)
		case crawl.ProgressFinished:
			logger.Info("finished", "tasks", e.Total)
		}
	}
}
