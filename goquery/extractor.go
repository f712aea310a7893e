package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

// DefaultContainerSelectors are probed in order to find the article body.
// Class selectors match any element carrying the class token.
var DefaultContainerSelectors = []string{
	"article", ".article", ".content", ".post", ".entry", ".main-content",
	"#content", "#article", ".story", ".detail", ".article-content",
	".article-body", ".post-content", ".entry-content", ".main",
	".text", ".body", "#main", ".container", ".wrapper",
}

// DefaultMinFallbackParagraph is the rune count a paragraph must exceed to be
// kept when no container could be found.
const DefaultMinFallbackParagraph = 30

// Elements removed from the container before text is collected.
const nonContentSelectors = "script, style, nav, footer, aside"

// Elements whose text forms the article paragraphs.
const paragraphSelectors = "p, h1, h2, h3, h4, h5, h6"

// Ensure Extractor implements harvest.Extractor at compile time.
var _ harvest.Extractor = (*Extractor)(nil)

// Extractor locates the article body with generic selectors, falling back
// to the div holding the most text.
type Extractor struct {
	Selectors            []string
	MinFallbackParagraph int
}

// NewExtractor creates an Extractor with the default selector list.
func NewExtractor() *Extractor {
	return &Extractor{
		Selectors:            DefaultContainerSelectors,
		MinFallbackParagraph: DefaultMinFallbackParagraph,
	}
}

// Extract returns the article paragraphs and the body container.
//
// Strategies, first match wins:
//   - selector: the first node, for the first selector in order, whose
//     trimmed text is non-empty
//   - largest-div: the div with the longest trimmed text, ties going to the
//     earliest div in document order
//   - paragraphs: every <p> longer than MinFallbackParagraph runes, with
//     <body> as the container
func (e *Extractor) Extract(root *html.Node) (*harvest.Extraction, error) {
	if root == nil {
		return nil, harvest.Errorf(harvest.EPARSE, "nil document")
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &harvest.Extraction{}
	if sel, container := e.matchSelector(doc); container != nil {
		result.Container = container
		result.Strategy = harvest.StrategySelector
		result.Selector = sel
	} else if container := largestDiv(doc); container != nil {
		result.Container = container
		result.Strategy = harvest.StrategyLargestDiv
	}

	if result.Container == nil {
		result.Strategy = harvest.StrategyParagraphs
		result.Paragraphs = longParagraphs(doc, e.MinFallbackParagraph)
		if body := doc.Find("body"); body.Length() > 0 {
			result.Container = body.Get(0)
		} else {
			result.Container = root
		}
		return result, nil
	}

	scope := goquery.NewDocumentFromNode(result.Container)
	scope.Find(nonContentSelectors).Remove()
	result.Paragraphs = paragraphs(scope.Selection)
	return result, nil
}

// matchSelector returns the first selector with a non-empty match.
func (e *Extractor) matchSelector(doc *goquery.Document) (string, *html.Node) {
	for _, selector := range e.Selectors {
		var found *html.Node
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) != "" {
				found = s.Get(0)
				return false
			}
			return true
		})
		if found != nil {
			return selector, found
		}
	}
	return "", nil
}

// divCandidate is a scored fallback container.
type divCandidate struct {
	node  *html.Node
	order int
	score int
}

// largestDiv scores every div by trimmed text length and returns the best.
// Returns nil when no div holds any text.
func largestDiv(doc *goquery.Document) *html.Node {
	var candidates []divCandidate
	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		candidates = append(candidates, divCandidate{
			node:  s.Get(0),
			order: i,
			score: textLength(s),
		})
	})

	var best *divCandidate
	for i := range candidates {
		c := &candidates[i]
		if c.score == 0 {
			continue
		}
		if best == nil || c.score > best.score || (c.score == best.score && c.order < best.order) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return best.node
}

// paragraphs collects trimmed heading and paragraph texts in document order.
func paragraphs(scope *goquery.Selection) []string {
	var out []string
	scope.Find(paragraphSelectors).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// longParagraphs collects <p> texts longer than minRunes across the document.
func longParagraphs(doc *goquery.Document, minRunes int) []string {
	var out []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && utf8.RuneCountInString(text) > minRunes {
			out = append(out, text)
		}
	})
	return out
}

func textLength(s *goquery.Selection) int {
	return utf8.RuneCountInString(strings.TrimSpace(s.Text()))
}
