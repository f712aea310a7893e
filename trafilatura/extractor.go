// Package trafilatura provides a harvest.Extractor backed by go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor runs trafilatura's main-content detection over a parsed page.
// When trafilatura finds no content, Fallback is used if set.
type Extractor struct {
	Fallback harvest.Extractor
}

// NewExtractor creates a new Extractor that delegates to fallback when
// trafilatura yields nothing. fallback may be nil.
func NewExtractor(fallback harvest.Extractor) *Extractor {
	return &Extractor{Fallback: fallback}
}

// Extract returns the paragraphs of trafilatura's content node. Images are
// kept in the node so media discovery can run inside it.
func (e *Extractor) Extract(root *html.Node) (*harvest.Extraction, error) {
	if root == nil {
		return nil, harvest.Errorf(harvest.EPARSE, "nil document")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, harvest.WrapError(harvest.EPARSE, err, "render document")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeImages:  true,
	}
	result, err := trafilatura.Extract(&buf, opts)
	if err != nil || result == nil || result.ContentNode == nil {
		if e.Fallback != nil {
			return e.Fallback.Extract(root)
		}
		if err != nil {
			return nil, harvest.WrapError(harvest.EPARSE, err, "trafilatura")
		}
		return nil, harvest.Errorf(harvest.EPARSE, "no content found")
	}

	paragraphs := contentParagraphs(result.ContentNode)
	if len(paragraphs) == 0 {
		paragraphs = splitLines(result.ContentText)
	}
	if len(paragraphs) == 0 && e.Fallback != nil {
		return e.Fallback.Extract(root)
	}

	return &harvest.Extraction{
		Paragraphs: paragraphs,
		Container:  result.ContentNode,
		Strategy:   harvest.StrategyTrafilatura,
	}, nil
}

func contentParagraphs(n *html.Node) []string {
	var out []string
	goquery.NewDocumentFromNode(n).Find("p, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
