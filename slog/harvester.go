package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingHarvester implements harvest.Harvester.
var _ harvest.Harvester = (*LoggingHarvester)(nil)

// LoggingHarvester wraps a Harvester and logs each asset written.
type LoggingHarvester struct {
	next   harvest.Harvester
	logger *slog.Logger
}

// NewLoggingHarvester creates a new LoggingHarvester.
func NewLoggingHarvester(next harvest.Harvester, logger *slog.Logger) *LoggingHarvester {
	return &LoggingHarvester{next: next, logger: logger}
}

// HarvestImages delegates to the wrapped harvester and logs the result.
func (h *LoggingHarvester) HarvestImages(ctx context.Context, req harvest.MediaRequest) (assets []harvest.MediaAsset, err error) {
	defer h.log(ctx, "harvest images", req, time.Now(), &assets, &err)
	return h.next.HarvestImages(ctx, req)
}

// HarvestVideos delegates to the wrapped harvester and logs the result.
func (h *LoggingHarvester) HarvestVideos(ctx context.Context, req harvest.MediaRequest) (assets []harvest.MediaAsset, err error) {
	defer h.log(ctx, "harvest videos", req, time.Now(), &assets, &err)
	return h.next.HarvestVideos(ctx, req)
}

func (h *LoggingHarvester) log(ctx context.Context, msg string, req harvest.MediaRequest, begin time.Time, assets *[]harvest.MediaAsset, err *error) {
	for _, a := range *assets {
		h.logger.DebugContext(ctx, "saved media",
			"file", a.FileName,
			"kind", a.Kind.String(),
			"width", a.Width,
			"height", a.Height,
			"source", a.SourceURL,
		)
	}
	h.logger.Log(ctx, level(slog.LevelInfo, *err), msg,
		"url", req.PageURL,
		"count", len(*assets),
		"duration", time.Since(begin),
		"err", *err,
	)
}
