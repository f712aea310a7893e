package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// urlDateRe matches the YYYY-MM/DD date segment many news sites embed in
// article URLs.
var urlDateRe = regexp.MustCompile(`(\d{4}-\d{2}/\d{2})`)

// URLDate returns the publication date embedded in an article URL.
func URLDate(rawURL string) (time.Time, bool) {
	m := urlDateRe.FindString(rawURL)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01/02", m)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PrunedArticle describes one text file removed by Prune.
type PrunedArticle struct {
	File  string
	URL   string
	Date  time.Time
	Media []string
}

// Pruner removes articles published before a cutoff year together with
// the media files listed in their manifests.
type Pruner struct {
	Layout Layout
	// DryRun reports what would be removed without touching any file.
	DryRun bool
}

// Prune removes every text file whose URL carries a date before year.
// Files without a recognizable header or URL date are kept.
func (p *Pruner) Prune(ctx context.Context, year int) ([]PrunedArticle, error) {
	entries, err := os.ReadDir(p.Layout.Texts())
	if err != nil {
		return nil, harvest.WrapError(harvest.EFILESYSTEM, err, "read %s", p.Layout.Texts())
	}

	var pruned []PrunedArticle
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}

		path := filepath.Join(p.Layout.Texts(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return pruned, harvest.WrapError(harvest.EFILESYSTEM, err, "read %s", path)
		}
		article, err := ParseArticle(string(data))
		if err != nil {
			continue
		}
		date, ok := URLDate(article.URL)
		if !ok || date.Year() >= year {
			continue
		}

		media := append(append([]string(nil), article.Images...), article.Videos...)
		pruned = append(pruned, PrunedArticle{File: e.Name(), URL: article.URL, Date: date, Media: media})
		if p.DryRun {
			continue
		}
		if err := os.Remove(path); err != nil {
			return pruned, harvest.WrapError(harvest.EFILESYSTEM, err, "remove %s", path)
		}
		for _, name := range media {
			if checkName(name) != nil {
				continue
			}
			for _, dir := range []string{p.Layout.Images(), p.Layout.Videos()} {
				if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
					return pruned, harvest.WrapError(harvest.EFILESYSTEM, err, "remove %s", name)
				}
			}
		}
	}
	return pruned, nil
}
