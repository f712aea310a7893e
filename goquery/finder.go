package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"golang.org/x/net/html"
)

// imageSelectors matches img tags and lazy-loading placeholders.
const imageSelectors = "img, [data-original-src], [data-lazy-src]"

// imageSourceAttrs are read in order; the first non-empty value wins.
var imageSourceAttrs = []string{"src", "data-src", "data-original", "data-original-src", "data-lazy-src"}

// BackgroundExcludes are substrings that disqualify a background image URL.
// This list is broader than the keyword filter applied to img-tag URLs.
var BackgroundExcludes = []string{"icon", "logo", "banner", "button", "bg-", "background"}

var backgroundRe = regexp.MustCompile(`background(?:-image)?\s*:\s*url\(['"]?(.*?)['"]?\)`)

// iframeMarkers identify iframes that embed a video player.
var iframeMarkers = []string{"video", "player", "youtube", "vimeo"}

// videoClassMarkers identify elements that may carry a video URL in data attributes.
var videoClassMarkers = []string{"video", "player", "media"}

var videoDataAttrs = []string{"data-video", "data-src", "data-video-src", "data-source"}

var videoFileMarkers = []string{"mp4", "webm", "ogg"}

var scriptVideoRe = regexp.MustCompile(`(?:video|source|media)(?:Url|URL|url|Src|src)(?:\s*:\s*|\s*=\s*)['"]([^"']+\.(?:mp4|webm|ogg))['"]`)

// Ensure MediaFinder implements harvest.MediaFinder at compile time.
var _ harvest.MediaFinder = (*MediaFinder)(nil)

// MediaFinder enumerates image and video references under a node.
type MediaFinder struct{}

// NewMediaFinder creates a new MediaFinder.
func NewMediaFinder() *MediaFinder {
	return &MediaFinder{}
}

// FindImages returns img-like elements and inline-style background images
// under scope, in document order. Each element is considered once even when
// it matches several selectors. Img candidates are numbered from 1 over all
// img-like elements; background candidates continue after the last img
// element so their file names never collide.
func (f *MediaFinder) FindImages(scope *html.Node, pageURL string) (*harvest.ImageCandidates, error) {
	base, err := parseBase(pageURL)
	if err != nil {
		return nil, err
	}
	sel := selectionOf(scope)

	out := &harvest.ImageCandidates{}
	imgs := sel.Find(imageSelectors)
	imgs.Each(func(i int, s *goquery.Selection) {
		src := firstAttr(s, imageSourceAttrs)
		if src == "" {
			return
		}
		resolved := ResolveURL(base, src)
		if resolved == "" {
			return
		}
		width, height := DisplaySize(s)
		out.Images = append(out.Images, harvest.ImageCandidate{
			URL:    resolved,
			Width:  width,
			Height: height,
			Index:  i + 1,
		})
	})

	offset := imgs.Length()
	for _, raw := range backgroundURLs(sel) {
		resolved := ResolveURL(base, raw)
		if resolved == "" {
			continue
		}
		out.Backgrounds = append(out.Backgrounds, harvest.ImageCandidate{
			URL:        resolved,
			Index:      offset + len(out.Backgrounds) + 1,
			Background: true,
		})
	}
	return out, nil
}

// backgroundURLs returns raw url(...) values from inline styles that pass
// the background exclusion list.
func backgroundURLs(sel *goquery.Selection) []string {
	var urls []string
	sel.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		m := backgroundRe.FindStringSubmatch(style)
		if m == nil || m[1] == "" {
			return
		}
		if containsAny(strings.ToLower(m[1]), BackgroundExcludes) {
			return
		}
		urls = append(urls, m[1])
	})
	return urls
}

// FindVideos returns video references under scope in this order: <video>
// sources and src attributes, player iframes, data attributes on
// video-like elements, then URLs assigned in inline scripts. Candidates are
// numbered from 1 over that list.
func (f *MediaFinder) FindVideos(scope *html.Node, pageURL string) ([]harvest.VideoCandidate, error) {
	base, err := parseBase(pageURL)
	if err != nil {
		return nil, err
	}
	sel := selectionOf(scope)

	var raw []string
	sel.Find("video").Each(func(_ int, video *goquery.Selection) {
		video.Find("source").Each(func(_ int, source *goquery.Selection) {
			if src, _ := source.Attr("src"); src != "" {
				raw = append(raw, src)
			}
		})
		if src, _ := video.Attr("src"); src != "" {
			raw = append(raw, src)
		}
	})

	sel.Find("iframe").Each(func(_ int, iframe *goquery.Selection) {
		if src, _ := iframe.Attr("src"); src != "" && containsAny(src, iframeMarkers) {
			raw = append(raw, src)
		}
	})

	raw = append(raw, dataAttributeVideos(sel)...)
	raw = append(raw, scriptVideos(sel)...)

	var out []harvest.VideoCandidate
	for i, src := range raw {
		resolved := ResolveURL(base, src)
		if resolved == "" {
			continue
		}
		out = append(out, harvest.VideoCandidate{URL: resolved, Index: i + 1})
	}
	return out, nil
}

// dataAttributeVideos reads video file URLs from data attributes of
// elements whose class names mention video, player or media.
func dataAttributeVideos(sel *goquery.Selection) []string {
	var urls []string
	sel.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !hasMarkedClass(class) {
			return
		}
		for _, attr := range videoDataAttrs {
			if v, ok := s.Attr(attr); ok && v != "" && containsAny(v, videoFileMarkers) {
				urls = append(urls, v)
			}
		}
	})
	return urls
}

// scriptVideos scans inline scripts for video URLs assigned to
// videoUrl/sourceSrc/mediaURL-like keys.
func scriptVideos(sel *goquery.Selection) []string {
	var urls []string
	sel.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		for _, m := range scriptVideoRe.FindAllStringSubmatch(s.Text(), -1) {
			urls = append(urls, m[1])
		}
	})
	return urls
}

func hasMarkedClass(class string) bool {
	for _, token := range strings.Fields(strings.ToLower(class)) {
		if containsAny(token, videoClassMarkers) {
			return true
		}
	}
	return false
}

func parseBase(pageURL string) (*url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, harvest.WrapError(harvest.EINVALID, err, "invalid page URL %q", pageURL)
	}
	return base, nil
}

// selectionOf wraps a node so Find searches its descendants.
func selectionOf(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

func firstAttr(s *goquery.Selection, attrs []string) string {
	for _, attr := range attrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
