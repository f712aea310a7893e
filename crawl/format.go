package crawl

// TruncateURL shortens a URL to at most maxLen runes for progress lines,
// keeping the tail where article slugs and dates live. Counting runes
// keeps unescaped CJK paths intact.
func TruncateURL(url string, maxLen int) string {
	r := []rune(url)
	switch {
	case maxLen <= 0:
		return ""
	case len(r) <= maxLen:
		return url
	case maxLen < 4:
		return string(r[:maxLen])
	}
	return "..." + string(r[len(r)-maxLen+3:])
}
