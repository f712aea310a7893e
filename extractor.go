package harvest

import "golang.org/x/net/html"

// Extraction strategies. The first three are attempted in order by the
// heuristic extractor; the others name the library extractor that found
// the body.
const (
	StrategySelector    = "selector"
	StrategyLargestDiv  = "largest-div"
	StrategyParagraphs  = "paragraphs"
	StrategyTrafilatura = "trafilatura"
	StrategyReadability = "readability"
)

// Extraction holds the article body located inside a parsed document.
type Extraction struct {
	// Paragraphs are the trimmed heading and paragraph texts in document
	// order. Empty strings are never included.
	Paragraphs []string

	// Container is the node judged to hold the article body. It points into
	// the document passed to Extract and must not outlive it. Media
	// discovery is scoped to it.
	Container *html.Node

	// Strategy names how the container was found.
	Strategy string

	// Selector is the container selector that matched, when Strategy is
	// StrategySelector.
	Selector string
}

// Parser turns a fetched page into a document tree.
type Parser interface {
	// Parse decodes the body to UTF-8 and parses it as HTML.
	// Returns EPARSE if the body cannot be parsed.
	Parse(resp *Response) (*html.Node, error)
}

// Extractor locates the article body in a parsed document.
type Extractor interface {
	// Extract returns the article paragraphs and the body container.
	// The extractor may remove script, style and navigation nodes from the
	// container; the document is owned by the caller.
	Extract(doc *html.Node) (*Extraction, error)
}
