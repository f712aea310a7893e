package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/harvest"
)

// VideoLinkPrefix starts the content of a video link file.
const VideoLinkPrefix = "Video link: "

// Ensure MediaStore implements harvest.MediaStore at compile time.
var _ harvest.MediaStore = (*MediaStore)(nil)

// MediaStore writes images to images/ and videos to videos/.
type MediaStore struct {
	layout Layout
}

// NewMediaStore creates a MediaStore for the layout.
func NewMediaStore(layout Layout) *MediaStore {
	return &MediaStore{layout: layout}
}

// SaveImage writes image bytes to images/name.
func (s *MediaStore) SaveImage(ctx context.Context, name string, data []byte) error {
	return writeFile(s.layout.Images(), name, data)
}

// SaveVideoLink writes a link file naming url to videos/name.
func (s *MediaStore) SaveVideoLink(ctx context.Context, name string, url string) error {
	return writeFile(s.layout.Videos(), name, []byte(VideoLinkPrefix+url))
}

// SaveVideo streams r to videos/name. A failure reading r is reported as
// ENETWORK and a failure writing as EFILESYSTEM; either way no partial file
// is left behind.
func (s *MediaStore) SaveVideo(ctx context.Context, name string, r io.Reader) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := filepath.Join(s.layout.Videos(), name)
	f, err := os.Create(path)
	if err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "create %s", path)
	}

	src := &trackingReader{r: r}
	_, err = io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		return nil
	}

	_ = os.Remove(path)
	if src.err != nil && errors.Is(err, src.err) {
		return harvest.WrapError(harvest.ENETWORK, err, "download %s", name)
	}
	return harvest.WrapError(harvest.EFILESYSTEM, err, "write %s", path)
}

// trackingReader remembers the last read error so copy failures can be
// attributed to the source or the destination.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func writeFile(dir, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "write %s", path)
	}
	return nil
}
