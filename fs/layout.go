// Package fs stores harvested articles, media and crawl progress as plain
// files under an output root.
package fs

import (
	"os"
	"path/filepath"

	"github.com/fwojciec/harvest"
)

// Output subdirectories.
const (
	TextsDir  = "texts"
	ImagesDir = "images"
	VideosDir = "videos"
)

// Layout locates the output directories under Root.
type Layout struct {
	Root string
}

// Texts returns the directory holding article text files.
func (l Layout) Texts() string { return filepath.Join(l.Root, TextsDir) }

// Images returns the directory holding image files.
func (l Layout) Images() string { return filepath.Join(l.Root, ImagesDir) }

// Videos returns the directory holding video files and link files.
func (l Layout) Videos() string { return filepath.Join(l.Root, VideosDir) }

// Ensure creates the output directories if they are absent.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Texts(), l.Images(), l.Videos()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return harvest.WrapError(harvest.EFILESYSTEM, err, "create %s", dir)
		}
	}
	return nil
}

// checkName rejects names that would escape their directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return harvest.Errorf(harvest.EINVALID, "invalid file name %q", name)
	}
	return nil
}
