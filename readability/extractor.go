// Package readability provides a harvest.Extractor backed by go-readability.
package readability

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor runs Mozilla's Readability algorithm over a parsed page.
// When it finds no paragraphs, Fallback is used if set.
type Extractor struct {
	Fallback harvest.Extractor
}

// NewExtractor creates a new Extractor. fallback may be nil.
func NewExtractor(fallback harvest.Extractor) *Extractor {
	return &Extractor{Fallback: fallback}
}

// Extract returns the paragraphs of the readable article. The container is
// the article re-parsed from Readability's cleaned HTML.
func (e *Extractor) Extract(root *html.Node) (*harvest.Extraction, error) {
	if root == nil {
		return nil, harvest.Errorf(harvest.EPARSE, "nil document")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, harvest.WrapError(harvest.EPARSE, err, "render document")
	}

	article, err := readability.FromReader(&buf, nil)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		if e.Fallback != nil {
			return e.Fallback.Extract(root)
		}
		if err != nil {
			return nil, harvest.WrapError(harvest.EPARSE, err, "readability")
		}
		return nil, harvest.Errorf(harvest.EPARSE, "no readable content")
	}

	container, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		return nil, harvest.WrapError(harvest.EPARSE, err, "parse readable content")
	}

	var paragraphs []string
	goquery.NewDocumentFromNode(container).Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 && e.Fallback != nil {
		return e.Fallback.Extract(root)
	}

	return &harvest.Extraction{
		Paragraphs: paragraphs,
		Container:  container,
		Strategy:   harvest.StrategyReadability,
	}, nil
}
