package mock

import (
	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

var (
	_ harvest.Parser    = (*Parser)(nil)
	_ harvest.Extractor = (*Extractor)(nil)
)

// Parser is a mock implementation of harvest.Parser.
type Parser struct {
	ParseFn func(resp *harvest.Response) (*html.Node, error)
}

func (p *Parser) Parse(resp *harvest.Response) (*html.Node, error) {
	return p.ParseFn(resp)
}

// Extractor is a mock implementation of harvest.Extractor.
type Extractor struct {
	ExtractFn func(doc *html.Node) (*harvest.Extraction, error)
}

func (e *Extractor) Extract(doc *html.Node) (*harvest.Extraction, error) {
	return e.ExtractFn(doc)
}
