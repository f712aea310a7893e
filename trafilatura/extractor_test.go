package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/mock"
	"github.com/fwojciec/harvest/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

const storyPage = `<!DOCTYPE html>
<html>
<head><title>Harbour Festival</title></head>
<body>
<nav class="main-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
</ul>
</nav>
<article>
<h1>Harbour Festival Returns</h1>
<p>The harbour festival returned this weekend after a two year pause, drawing thousands of visitors to the waterfront.</p>
<p>Organisers said the fireworks display on Saturday night was the largest the town has ever staged, with boats lining the bay.</p>
<p>Local traders reported record sales, and the council has already confirmed dates for next summer's edition of the event.</p>
</article>
<footer>Copyright 2024 Coastal News</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts article paragraphs", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor(nil)
		got, err := ext.Extract(parse(t, storyPage))

		require.NoError(t, err)
		assert.Equal(t, harvest.StrategyTrafilatura, got.Strategy)
		require.NotNil(t, got.Container)
		joined := strings.Join(got.Paragraphs, "\n")
		assert.Contains(t, joined, "fireworks display")
		assert.NotContains(t, joined, "Copyright 2024")
	})

	t.Run("delegates to fallback when no content is found", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.Extractor{
			ExtractFn: func(doc *html.Node) (*harvest.Extraction, error) {
				return &harvest.Extraction{Strategy: harvest.StrategyParagraphs}, nil
			},
		}

		ext := trafilatura.NewExtractor(fallback)
		got, err := ext.Extract(parse(t, `<html><body></body></html>`))

		require.NoError(t, err)
		assert.Equal(t, harvest.StrategyParagraphs, got.Strategy)
	})

	t.Run("returns parse error for nil document", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor(nil).Extract(nil)

		assert.Equal(t, harvest.EPARSE, harvest.ErrorCode(err))
	})
}
