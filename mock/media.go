package mock

import (
	"context"
	"io"

	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

var (
	_ harvest.MediaFinder = (*MediaFinder)(nil)
	_ harvest.Harvester   = (*Harvester)(nil)
	_ harvest.MediaStore  = (*MediaStore)(nil)
)

// MediaFinder is a mock implementation of harvest.MediaFinder.
type MediaFinder struct {
	FindImagesFn func(scope *html.Node, pageURL string) (*harvest.ImageCandidates, error)
	FindVideosFn func(scope *html.Node, pageURL string) ([]harvest.VideoCandidate, error)
}

func (f *MediaFinder) FindImages(scope *html.Node, pageURL string) (*harvest.ImageCandidates, error) {
	return f.FindImagesFn(scope, pageURL)
}

func (f *MediaFinder) FindVideos(scope *html.Node, pageURL string) ([]harvest.VideoCandidate, error) {
	return f.FindVideosFn(scope, pageURL)
}

// Harvester is a mock implementation of harvest.Harvester.
type Harvester struct {
	HarvestImagesFn func(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error)
	HarvestVideosFn func(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error)
}

func (h *Harvester) HarvestImages(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error) {
	return h.HarvestImagesFn(ctx, req)
}

func (h *Harvester) HarvestVideos(ctx context.Context, req harvest.MediaRequest) ([]harvest.MediaAsset, error) {
	return h.HarvestVideosFn(ctx, req)
}

// MediaStore is a mock implementation of harvest.MediaStore.
type MediaStore struct {
	SaveImageFn     func(ctx context.Context, name string, data []byte) error
	SaveVideoFn     func(ctx context.Context, name string, r io.Reader) error
	SaveVideoLinkFn func(ctx context.Context, name string, url string) error
}

func (s *MediaStore) SaveImage(ctx context.Context, name string, data []byte) error {
	return s.SaveImageFn(ctx, name, data)
}

func (s *MediaStore) SaveVideo(ctx context.Context, name string, r io.Reader) error {
	return s.SaveVideoFn(ctx, name, r)
}

func (s *MediaStore) SaveVideoLink(ctx context.Context, name string, url string) error {
	return s.SaveVideoLinkFn(ctx, name, url)
}
