package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/harvest"
)

// Text file labels.
const (
	titlePrefix  = "Title: "
	urlPrefix    = "URL: "
	imagesHeader = "\n\nImages:\n"
	videosHeader = "\n\nVideos:\n"
)

// FormatArticle renders an article as a text file: a Title/URL header, the
// paragraphs separated by blank lines, then the image and video manifests
// when non-empty.
func FormatArticle(a *harvest.Article) string {
	var b strings.Builder
	b.WriteString(titlePrefix)
	b.WriteString(a.Title)
	b.WriteString("\n")
	b.WriteString(urlPrefix)
	b.WriteString(a.URL)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(a.Paragraphs, "\n\n"))

	if len(a.Images) > 0 {
		b.WriteString(imagesHeader)
		for i, img := range a.Images {
			fmt.Fprintf(&b, "%d. %s - size: %dx%d\n", i+1, img.FileName, img.Width, img.Height)
		}
	}
	if len(a.Videos) > 0 {
		b.WriteString(videosHeader)
		for i, v := range a.Videos {
			fmt.Fprintf(&b, "%d. %s\n", i+1, v.FileName)
		}
	}
	return b.String()
}

// ParsedArticle is a text file read back from disk.
type ParsedArticle struct {
	Title      string
	URL        string
	Paragraphs []string
	// Images and Videos are the manifest file names.
	Images []string
	Videos []string
}

// ParseArticle reads back text rendered by FormatArticle.
// Returns EPARSE if the Title/URL header is missing.
func ParseArticle(content string) (*ParsedArticle, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	header, body, _ := strings.Cut(content, "\n\n")
	lines := strings.SplitN(header, "\n", 2)
	if len(lines) != 2 || !strings.HasPrefix(lines[0], titlePrefix) || !strings.HasPrefix(lines[1], urlPrefix) {
		return nil, harvest.Errorf(harvest.EPARSE, "missing title and URL header")
	}

	a := &ParsedArticle{
		Title: strings.TrimPrefix(lines[0], titlePrefix),
		URL:   strings.TrimPrefix(lines[1], urlPrefix),
	}

	// Manifests follow the body, so search from the end.
	body = "\n\n" + body
	if i := strings.LastIndex(body, videosHeader); i >= 0 {
		a.Videos = manifestNames(body[i+len(videosHeader):])
		body = body[:i]
	}
	if i := strings.LastIndex(body, imagesHeader); i >= 0 {
		a.Images = manifestNames(body[i+len(imagesHeader):])
		body = body[:i]
	}

	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			a.Paragraphs = append(a.Paragraphs, p)
		}
	}
	return a, nil
}

// manifestNames extracts file names from "N. name" or
// "N. name - size: WxH" lines.
func manifestNames(section string) []string {
	var names []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		_, name, ok := strings.Cut(line, ". ")
		if !ok {
			continue
		}
		if i := strings.LastIndex(name, " - size: "); i >= 0 {
			name = name[:i]
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Ensure ArticleWriter implements harvest.ArticleWriter at compile time.
var _ harvest.ArticleWriter = (*ArticleWriter)(nil)

// ArticleWriter writes articles to texts/<sanitized title>.txt. A later
// write for the same title overwrites the file.
type ArticleWriter struct {
	layout Layout
}

// NewArticleWriter creates an ArticleWriter for the layout.
func NewArticleWriter(layout Layout) *ArticleWriter {
	return &ArticleWriter{layout: layout}
}

// WriteArticle renders the article and writes it to disk.
func (w *ArticleWriter) WriteArticle(ctx context.Context, a *harvest.Article) error {
	name := harvest.SanitizeTitle(a.Title) + ".txt"
	if err := checkName(name); err != nil {
		return err
	}
	path := filepath.Join(w.layout.Texts(), name)
	if err := os.WriteFile(path, []byte(FormatArticle(a)), 0644); err != nil {
		return harvest.WrapError(harvest.EFILESYSTEM, err, "write %s", path)
	}
	return nil
}
