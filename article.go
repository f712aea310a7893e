package harvest

import (
	"context"
	"strings"
)

// Article is the final text artifact for a task.
type Article struct {
	Title      string
	URL        string
	Paragraphs []string
	Images     []MediaAsset
	Videos     []MediaAsset
}

// ArticleWriter persists rendered articles.
type ArticleWriter interface {
	// WriteArticle renders and writes the article.
	// Returns EFILESYSTEM on write failure.
	WriteArticle(ctx context.Context, a *Article) error
}

// SanitizeTitle strips characters that are illegal in file names on common
// filesystems. The result names every file written for the task.
func SanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/*?:"<>|`, r) {
			return -1
		}
		return r
	}, title)
}
