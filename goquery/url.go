package goquery

import (
	"net/url"
	"strings"
)

// ResolveURL resolves href against the page URL. Returns an empty string
// for unparseable references and for non-HTTP schemes (data:, javascript:,
// mailto:, ...). Fragments are stripped.
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
