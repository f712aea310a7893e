package harvest

import (
	"context"
	"io"

	"golang.org/x/net/html"
)

// MediaKind classifies a harvested media asset.
type MediaKind int

// Media kinds.
const (
	MediaImage MediaKind = iota
	MediaVideoFile
	MediaVideoLink
)

// String returns the kind's name.
func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideoFile:
		return "video"
	case MediaVideoLink:
		return "video-link"
	default:
		return "unknown"
	}
}

// MediaAsset is a media file written for a task.
type MediaAsset struct {
	// FileName is unique within one task's output.
	FileName string    `json:"fileName"`
	Kind     MediaKind `json:"kind"`
	// Width and Height are the display size for images and 0 for videos.
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SourceURL string `json:"sourceUrl"`
}

// ImageCandidate is an image reference found in a document.
type ImageCandidate struct {
	// URL is resolved against the page URL.
	URL string
	// Width and Height are the display size declared in HTML or inline CSS,
	// or 0 when unknown.
	Width  int
	Height int
	// Index numbers the candidate for file naming.
	Index int
	// Background is set for inline style background images.
	Background bool
}

// ImageCandidates groups the image references found in a document.
type ImageCandidates struct {
	Images      []ImageCandidate
	Backgrounds []ImageCandidate
}

// VideoCandidate is a video reference found in a document.
type VideoCandidate struct {
	// URL is resolved against the page URL.
	URL string
	// Index numbers the candidate for file naming.
	Index int
}

// MediaFinder enumerates media references inside a document subtree.
type MediaFinder interface {
	// FindImages returns img-tag and background image candidates under scope.
	FindImages(scope *html.Node, pageURL string) (*ImageCandidates, error)

	// FindVideos returns video candidates under scope.
	FindVideos(scope *html.Node, pageURL string) ([]VideoCandidate, error)
}

// MediaRequest describes the media to harvest for one task.
type MediaRequest struct {
	// Scope is the article container, or the whole document as a fallback.
	Scope   *html.Node
	PageURL string
	Title   string
}

// Harvester discovers, filters, downloads and stores media for a task.
// Failures on single assets are skipped; only filesystem failures abort.
type Harvester interface {
	// HarvestImages returns the image assets actually written.
	HarvestImages(ctx context.Context, req MediaRequest) ([]MediaAsset, error)

	// HarvestVideos returns the video assets actually written.
	HarvestVideos(ctx context.Context, req MediaRequest) ([]MediaAsset, error)
}

// MediaStore writes media binaries with deterministic names.
// All methods return EFILESYSTEM on write failure.
type MediaStore interface {
	SaveImage(ctx context.Context, name string, data []byte) error
	SaveVideo(ctx context.Context, name string, r io.Reader) error
	SaveVideoLink(ctx context.Context, name string, url string) error
}
