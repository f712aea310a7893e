package media

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/fwojciec/harvest"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// DefaultImageExtension is used when nothing identifies an image's format.
const DefaultImageExtension = "jpg"

// DefaultVideoExtension is used when neither Content-Type nor URL identify
// a video's container.
const DefaultVideoExtension = "mp4"

// imageInfo is what the image header reveals.
type imageInfo struct {
	Format string
	Width  int
	Height int
}

// decodeImage reads the image header. Returns EPARSE for data that no
// registered decoder understands.
func decodeImage(data []byte) (imageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageInfo{}, harvest.WrapError(harvest.EPARSE, err, "decode image header")
	}
	return imageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// contentTypeExtensions maps Content-Type substrings to extensions, checked
// in order.
var contentTypeExtensions = []struct {
	marker string
	ext    string
}{
	{"jpeg", "jpg"},
	{"jpg", "jpg"},
	{"png", "png"},
	{"gif", "gif"},
	{"webp", "webp"},
}

// imageExtension picks a file extension from the decoded format, then the
// Content-Type, then by sniffing the bytes.
func imageExtension(format, contentType string, data []byte) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "":
	default:
		return format
	}

	contentType = strings.ToLower(contentType)
	for _, m := range contentTypeExtensions {
		if strings.Contains(contentType, m.marker) {
			return m.ext
		}
	}

	if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") && mt.Extension() != "" {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return DefaultImageExtension
}

var videoExtensions = []string{"mp4", "webm", "ogg"}

// videoExtension picks an extension from the Content-Type, then the URL.
func videoExtension(contentType, rawURL string) string {
	contentType = strings.ToLower(contentType)
	for _, ext := range videoExtensions {
		if strings.Contains(contentType, ext) {
			return ext
		}
	}
	for _, ext := range videoExtensions {
		if strings.Contains(rawURL, "."+ext) {
			return ext
		}
	}
	return DefaultVideoExtension
}
