// Package crawl drives tasks one at a time through fetch, extract,
// harvest, write and commit, with politeness delays between requests.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

// Default delays applied by the orchestrator.
var (
	DefaultPageDelay       = harvest.Delay{Min: 2 * time.Second, Max: 5 * time.Second}
	DefaultNetworkCooldown = harvest.Fixed(10 * time.Second)
	DefaultFailureCooldown = harvest.Fixed(5 * time.Second)
)

// Crawler orchestrates the harvesting of a task list.
type Crawler struct {
	Fetcher   harvest.Fetcher
	Parser    harvest.Parser
	Extractor harvest.Extractor
	Harvester harvest.Harvester
	Writer    harvest.ArticleWriter
	Ledger    harvest.Ledger

	// Pauser applies delays and cooldowns. Nil disables them.
	Pauser harvest.Pauser
	// RateLimiter, if set, is waited on before every page fetch.
	RateLimiter harvest.DomainLimiter

	// PageDelay follows every committed task.
	PageDelay harvest.Delay
	// NetworkCooldown follows a task that failed with ENETWORK.
	NetworkCooldown harvest.Delay
	// FailureCooldown follows a task that failed for any other reason.
	FailureCooldown harvest.Delay
	// RetryDelays are waited between page fetch attempts within a run.
	// Nil means a failed fetch is only retried by the next run.
	RetryDelays []harvest.Delay
}

// Result holds the outcome of a run.
type Result struct {
	Total     int
	Skipped   int
	Committed int
	Failed    int
}

// State is a task's position in the pipeline.
type State string

// Task states, in pipeline order.
const (
	StatePending    State = "pending"
	StateSkipped    State = "skipped"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateHarvesting State = "harvesting"
	StateWriting    State = "writing"
	StateCommitted  State = "committed"
)

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type ProgressType
	// Position is the 1-based index of Task in the task list.
	Position int
	Total    int
	Task     harvest.Task
	// State is the state entered, or for failures the state the task
	// failed in.
	State State
	// Strategy names how the article body was found.
	Strategy   string
	Paragraphs int
	Images     int
	Videos     int
	Error      error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressState
	ProgressSkipped
	ProgressCommitted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// taskError records the state a task failed in.
type taskError struct {
	state State
	err   error
}

func (e *taskError) Error() string { return fmt.Sprintf("%s: %v", e.state, e.err) }
func (e *taskError) Unwrap() error { return e.err }

// Run processes tasks in order. Tasks already in the ledger are skipped.
// A failed task is not committed and the run moves on after a cooldown;
// the task is retried by the next run. Run returns early with the context
// error when ctx is canceled; the task in flight is not committed.
func (c *Crawler) Run(ctx context.Context, tasks []harvest.Task, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	total := len(tasks)
	result := &Result{Total: total}

	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		event := ProgressEvent{Position: i + 1, Total: total, Task: task}

		if c.Ledger.Contains(task.URL) {
			result.Skipped++
			event.Type, event.State = ProgressSkipped, StateSkipped
			progress(event)
			continue
		}
		if err := task.Validate(); err != nil {
			result.Skipped++
			event.Type, event.State, event.Error = ProgressSkipped, StateSkipped, err
			progress(event)
			continue
		}

		article, strategy, err := c.process(ctx, event, progress)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Failed++
			event.Type, event.Error = ProgressFailed, err
			event.State = StatePending
			var te *taskError
			if errors.As(err, &te) {
				event.State, event.Error = te.state, te.err
			}
			progress(event)

			if i < total-1 {
				if err := c.pause(ctx, c.cooldown(event.Error)); err != nil {
					return result, err
				}
			}
			continue
		}

		result.Committed++
		event.Type, event.State = ProgressCommitted, StateCommitted
		event.Strategy = strategy
		event.Paragraphs = len(article.Paragraphs)
		event.Images = len(article.Images)
		event.Videos = len(article.Videos)
		progress(event)

		if i < total-1 {
			if err := c.pause(ctx, c.PageDelay); err != nil {
				return result, err
			}
		}
	}

	progress(ProgressEvent{Type: ProgressFinished, Total: total})
	return result, nil
}

// process runs one task from fetch to commit and returns the article with
// the extraction strategy that found its body.
func (c *Crawler) process(ctx context.Context, event ProgressEvent, progress ProgressFunc) (*harvest.Article, string, error) {
	task := event.Task
	enter := func(s State) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		event.Type, event.State = ProgressState, s
		progress(event)
		return nil
	}

	if err := enter(StateFetching); err != nil {
		return nil, "", err
	}
	resp, err := c.fetchPage(ctx, task.URL)
	if err != nil {
		return nil, "", &taskError{StateFetching, err}
	}

	if err := enter(StateExtracting); err != nil {
		return nil, "", err
	}
	doc, err := c.Parser.Parse(resp)
	if err != nil {
		return nil, "", &taskError{StateExtracting, err}
	}
	extraction, err := c.Extractor.Extract(doc)
	if err != nil {
		return nil, "", &taskError{StateExtracting, err}
	}

	event.Strategy = extraction.Strategy
	if err := enter(StateHarvesting); err != nil {
		return nil, "", err
	}
	req := harvest.MediaRequest{
		Scope:   mediaScope(extraction, doc),
		PageURL: task.URL,
		Title:   task.Title,
	}
	images, err := c.Harvester.HarvestImages(ctx, req)
	if err != nil {
		return nil, "", &taskError{StateHarvesting, err}
	}
	videos, err := c.Harvester.HarvestVideos(ctx, req)
	if err != nil {
		return nil, "", &taskError{StateHarvesting, err}
	}

	if err := enter(StateWriting); err != nil {
		return nil, "", err
	}
	article := &harvest.Article{
		Title:      task.Title,
		URL:        task.URL,
		Paragraphs: extraction.Paragraphs,
		Images:     images,
		Videos:     videos,
	}
	if err := c.Writer.WriteArticle(ctx, article); err != nil {
		return nil, "", &taskError{StateWriting, err}
	}

	// Outputs are complete; only now may the URL enter the ledger.
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if err := c.Ledger.Commit(ctx, task.URL); err != nil {
		return nil, "", &taskError{StateWriting, err}
	}
	return article, extraction.Strategy, nil
}

// mediaScope is the container when one was found, else the whole document.
func mediaScope(e *harvest.Extraction, doc *html.Node) *html.Node {
	if e != nil && e.Container != nil {
		return e.Container
	}
	return doc
}

func (c *Crawler) fetchPage(ctx context.Context, rawURL string) (*harvest.Response, error) {
	fetch := func(ctx context.Context, rawURL string) (*harvest.Response, error) {
		if c.RateLimiter != nil {
			u, err := url.Parse(rawURL)
			if err != nil {
				return nil, harvest.WrapError(harvest.EINVALID, err, "invalid URL %q", rawURL)
			}
			if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
				return nil, err
			}
		}
		return c.Fetcher.Fetch(ctx, rawURL)
	}
	return FetchWithRetry(ctx, rawURL, fetch, c.Pauser, c.RetryDelays)
}

// cooldown picks the pause after a failed task from the error code.
func (c *Crawler) cooldown(err error) harvest.Delay {
	if harvest.ErrorCode(err) == harvest.ENETWORK {
		return c.NetworkCooldown
	}
	return c.FailureCooldown
}

func (c *Crawler) pause(ctx context.Context, d harvest.Delay) error {
	if c.Pauser == nil {
		return nil
	}
	return c.Pauser.Pause(ctx, d)
}
