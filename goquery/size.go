package goquery

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxPixels bounds declared sizes; anything larger is treated as garbage.
const maxPixels = 100000

var (
	styleWidthRe  = regexp.MustCompile(`(?i)(?:^|[;\s])width\s*:\s*(\d+(?:\.\d+)?)\s*(px)?\s*(?:;|$|!)`)
	styleHeightRe = regexp.MustCompile(`(?i)(?:^|[;\s])height\s*:\s*(\d+(?:\.\d+)?)\s*(px)?\s*(?:;|$|!)`)
)

// DisplaySize returns the rendered size declared on an element, from the
// width/height attributes (numeric or px-suffixed) or, failing that, from
// width/height declarations in the inline style. Returns 0, 0 when either
// dimension is unknown.
func DisplaySize(s *goquery.Selection) (width, height int) {
	w, wok := s.Attr("width")
	h, hok := s.Attr("height")
	if wok && hok {
		width, werr := parsePixels(w)
		height, herr := parsePixels(h)
		if werr == nil && herr == nil && width > 0 && height > 0 {
			return width, height
		}
	}

	style, _ := s.Attr("style")
	return StyleSize(style)
}

// StyleSize parses pixel width and height declarations from an inline style.
// Relative units such as % or em are not display sizes and yield 0, 0.
func StyleSize(style string) (width, height int) {
	wm := styleWidthRe.FindStringSubmatch(style)
	hm := styleHeightRe.FindStringSubmatch(style)
	if wm == nil || hm == nil {
		return 0, 0
	}
	w, werr := parsePixels(wm[1])
	h, herr := parsePixels(hm[1])
	if werr != nil || herr != nil {
		return 0, 0
	}
	return w, h
}

// parsePixels parses "400", "400px" or "400.5" into whole pixels.
func parsePixels(v string) (int, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < 0 || f > maxPixels {
		return 0, strconv.ErrRange
	}
	return int(f), nil
}
