// Package goquery implements article body extraction and media discovery
// over parsed HTML documents using CSS selectors.
package goquery

import (
	"bytes"

	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Ensure Parser implements harvest.Parser at compile time.
var _ harvest.Parser = (*Parser)(nil)

// Parser decodes fetched pages to UTF-8 and parses them into a node tree.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the page encoding from the Content-Type header, a BOM or a
// meta charset declaration, then parses the HTML.
func (p *Parser) Parse(resp *harvest.Response) (*html.Node, error) {
	if resp == nil || len(resp.Body) == 0 {
		return nil, harvest.Errorf(harvest.EPARSE, "empty HTML input")
	}

	r, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, harvest.WrapError(harvest.EPARSE, err, "decode %s", resp.URL)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, harvest.WrapError(harvest.EPARSE, err, "parse HTML of %s", resp.URL)
	}
	return doc, nil
}
