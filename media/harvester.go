// Package media downloads, filters and stores the images and videos
// referenced by an article.
package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
)

// Default harvesting thresholds and politeness delays.
const (
	DefaultMinWidth  = 300
	DefaultMinHeight = 200
)

// DefaultImageDelay follows every image request.
var DefaultImageDelay = harvest.Delay{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}

// DefaultVideoDelay follows every video download.
var DefaultVideoDelay = harvest.Delay{Min: time.Second, Max: 3 * time.Second}

// ImageExcludes are case-insensitive substrings that reject an img-tag URL.
var ImageExcludes = []string{"icon", "logo", "ad.", "ad/", "advert", "advertisement"}

// linkHosts mark video URLs that are recorded rather than downloaded.
var linkHosts = []string{"youtube.com", "vimeo.com", "player"}

// Ensure Harvester implements harvest.Harvester at compile time.
var _ harvest.Harvester = (*Harvester)(nil)

// Harvester discovers media with a MediaFinder, downloads it with a Fetcher
// and writes it to a MediaStore. Requests are issued one at a time.
type Harvester struct {
	Finder  harvest.MediaFinder
	Fetcher harvest.Fetcher
	Store   harvest.MediaStore

	// Pauser applies the politeness delays. Nil disables them.
	Pauser harvest.Pauser
	// RateLimiter, if set, is waited on before every request.
	RateLimiter harvest.DomainLimiter

	MinWidth   int
	MinHeight  int
	ImageDelay harvest.Delay
	VideoDelay harvest.Delay
}

// NewHarvester creates a Harvester with the default thresholds and delays.
func NewHarvester(finder harvest.MediaFinder, fetcher harvest.Fetcher, store harvest.MediaStore, pauser harvest.Pauser) *Harvester {
	return &Harvester{
		Finder:     finder,
		Fetcher:    fetcher,
		Store:      store,
		Pauser:     pauser,
		MinWidth:   DefaultMinWidth,
		MinHeight:  DefaultMinHeight,
		ImageDelay: DefaultImageDelay,
		VideoDelay: DefaultVideoDelay,
	}
}

// HarvestImages downloads the images under req.Scope that pass the keyword
// and size filters. Assets that fail to download or decode are skipped; a
// store failure aborts the harvest and is returned with the assets already
// written.
func (h *Harvester) HarvestImages(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error) {
	found, err := h.Finder.FindImages(req.Scope, req.PageURL)
	if err != nil || found == nil {
		return nil, err
	}

	run := &imageRun{
		safeTitle: harvest.SanitizeTitle(req.Title),
		seenURLs:  make(map[string]struct{}),
		seenData:  make(map[uint64]struct{}),
	}
	var assets []harvest.MediaAsset
	for _, c := range append(found.Images, found.Backgrounds...) {
		if err := ctx.Err(); err != nil {
			return assets, err
		}
		asset, err := h.harvestImage(ctx, run, c)
		if err != nil {
			if isFatal(ctx, err) {
				return assets, err
			}
			continue
		}
		if asset != nil {
			assets = append(assets, *asset)
		}
	}
	return assets, nil
}

// imageRun tracks what one HarvestImages call has already written.
type imageRun struct {
	safeTitle string
	seenURLs  map[string]struct{}
	seenData  map[uint64]struct{}
}

// harvestImage returns a nil asset when the candidate is filtered out.
func (h *Harvester) harvestImage(ctx context.Context, run *imageRun, c harvest.ImageCandidate) (*harvest.MediaAsset, error) {
	if _, ok := run.seenURLs[c.URL]; ok {
		return nil, nil
	}
	run.seenURLs[c.URL] = struct{}{}

	if !c.Background && containsAny(strings.ToLower(c.URL), ImageExcludes) {
		return nil, nil
	}

	width, height := c.Width, c.Height
	measured := width > 0 && height > 0
	if measured && !h.largeEnough(width, height) {
		return nil, nil
	}

	resp, err := h.fetch(ctx, c.URL, h.ImageDelay)
	if err != nil {
		return nil, err
	}

	info, decodeErr := decodeImage(resp.Body)
	if !measured {
		if decodeErr != nil {
			return nil, decodeErr
		}
		width, height = info.Width, info.Height
		if !h.largeEnough(width, height) {
			return nil, nil
		}
	}

	sum := xxhash.Sum64(resp.Body)
	if _, ok := run.seenData[sum]; ok {
		return nil, nil
	}

	ext := imageExtension(info.Format, resp.ContentType, resp.Body)
	name := fmt.Sprintf("%s_%d.%s", run.safeTitle, c.Index, ext)
	if c.Background {
		name = fmt.Sprintf("%s_bg_%d.%s", run.safeTitle, c.Index, ext)
	}
	if err := h.Store.SaveImage(ctx, name, resp.Body); err != nil {
		return nil, err
	}
	run.seenData[sum] = struct{}{}

	return &harvest.MediaAsset{
		FileName:  name,
		Kind:      harvest.MediaImage,
		Width:     width,
		Height:    height,
		SourceURL: c.URL,
	}, nil
}

func (h *Harvester) largeEnough(width, height int) bool {
	return width >= h.MinWidth && height >= h.MinHeight
}

// HarvestVideos records embedded players as link files and streams direct
// video files to the store. Failed downloads are skipped; a store failure
// aborts the harvest.
func (h *Harvester) HarvestVideos(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error) {
	found, err := h.Finder.FindVideos(req.Scope, req.PageURL)
	if err != nil {
		return nil, err
	}

	safeTitle := harvest.SanitizeTitle(req.Title)
	seen := make(map[string]struct{})
	var assets []harvest.MediaAsset
	for _, c := range found {
		if err := ctx.Err(); err != nil {
			return assets, err
		}
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}

		var asset *harvest.MediaAsset
		if IsVideoLink(c.URL) {
			asset, err = h.saveVideoLink(ctx, safeTitle, c)
		} else {
			asset, err = h.downloadVideo(ctx, safeTitle, c)
		}
		if err != nil {
			if isFatal(ctx, err) {
				return assets, err
			}
			continue
		}
		assets = append(assets, *asset)
	}
	return assets, nil
}

// IsVideoLink reports whether a video URL points at a hosted player that is
// recorded instead of downloaded. The match ignores case.
func IsVideoLink(rawURL string) bool {
	return containsAny(strings.ToLower(rawURL), linkHosts)
}

func (h *Harvester) saveVideoLink(ctx context.Context, safeTitle string, c harvest.VideoCandidate) (*harvest.MediaAsset, error) {
	name := fmt.Sprintf("%s_%d_link.txt", safeTitle, c.Index)
	if err := h.Store.SaveVideoLink(ctx, name, c.URL); err != nil {
		return nil, err
	}
	return &harvest.MediaAsset{FileName: name, Kind: harvest.MediaVideoLink, SourceURL: c.URL}, nil
}

func (h *Harvester) downloadVideo(ctx context.Context, safeTitle string, c harvest.VideoCandidate) (*harvest.MediaAsset, error) {
	if err := h.wait(ctx, c.URL); err != nil {
		return nil, err
	}
	stream, err := h.Fetcher.Stream(ctx, c.URL)
	if err != nil {
		return nil, h.pauseAfter(ctx, h.VideoDelay, err)
	}
	defer stream.Body.Close()

	name := fmt.Sprintf("%s_%d.%s", safeTitle, c.Index, videoExtension(stream.ContentType, c.URL))
	err = h.Store.SaveVideo(ctx, name, stream.Body)
	if err := h.pauseAfter(ctx, h.VideoDelay, err); err != nil {
		return nil, err
	}
	return &harvest.MediaAsset{FileName: name, Kind: harvest.MediaVideoFile, SourceURL: c.URL}, nil
}

// fetch downloads a whole asset and applies the politeness delay afterwards,
// whether or not the request succeeded.
func (h *Harvester) fetch(ctx context.Context, rawURL string, delay harvest.Delay) (*harvest.Response, error) {
	if err := h.wait(ctx, rawURL); err != nil {
		return nil, err
	}
	resp, err := h.Fetcher.Fetch(ctx, rawURL)
	if err := h.pauseAfter(ctx, delay, err); err != nil {
		return nil, err
	}
	return resp, nil
}

// pauseAfter waits out delay and returns reqErr, or the pause error if the
// context ends first.
func (h *Harvester) pauseAfter(ctx context.Context, delay harvest.Delay, reqErr error) error {
	if h.Pauser != nil {
		if err := h.Pauser.Pause(ctx, delay); err != nil {
			return err
		}
	}
	return reqErr
}

func (h *Harvester) wait(ctx context.Context, rawURL string) error {
	if h.RateLimiter == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return harvest.WrapError(harvest.EINVALID, err, "invalid media URL %q", rawURL)
	}
	return h.RateLimiter.Wait(ctx, u.Host)
}

// isFatal reports whether an asset error must abort the harvest rather than
// skip the asset.
func isFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || harvest.ErrorCode(err) == harvest.EFILESYSTEM
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
