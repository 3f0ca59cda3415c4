package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFirstStopsAtFirstMatch(t *testing.T) {
	// Only the second of three candidates matches; its value must win and
	// the third candidate must not override it.
	doc := mustDoc(t, `
		<html><body>
			<span class="fallback-price">$12.99</span>
			<span class="last-resort">$99.99</span>
		</body></html>`)

	candidates := []Candidate{
		{Selector: ".primary-price"},
		{Selector: ".fallback-price"},
		{Selector: ".last-resort"},
	}

	value, ok := First(doc, candidates)
	assert.True(t, ok)
	assert.Equal(t, "$12.99", value)
}

func TestFirstMissingAttributeFallsThrough(t *testing.T) {
	// The image node matched by the first candidate has no src; the next
	// candidate must be tried.
	doc := mustDoc(t, `
		<html><body>
			<img id="landingImage" alt="no source yet">
			<img class="s-image" src="https://m.media-amazon.com/images/I/71Swqqe7XAL.jpg">
		</body></html>`)

	candidates := []Candidate{
		{Selector: "#landingImage", Attr: "src"},
		{Selector: "img.s-image", Attr: "src"},
	}

	value, ok := First(doc, candidates)
	assert.True(t, ok)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71Swqqe7XAL.jpg", value)
}

func TestFirstNoMatch(t *testing.T) {
	doc := mustDoc(t, `<html><body><div>nothing relevant</div></body></html>`)

	value, ok := First(doc, []Candidate{
		{Selector: "#productTitle"},
		{Selector: ".a-price-whole"},
	})
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestFirstEmptyTextFallsThrough(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<div id="productTitle">   </div>
			<span class="a-size-large">Echo Dot (3rd Gen)</span>
		</body></html>`)

	value, ok := First(doc, []Candidate{
		{Selector: "#productTitle"},
		{Selector: "span.a-size-large"},
	})
	assert.True(t, ok)
	assert.Equal(t, "Echo Dot (3rd Gen)", value)
}

func TestFirstIn(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<div class="card" id="one"><span class="price">$9.99</span></div>
			<div class="card" id="two"><span class="price">$19.99</span></div>
		</body></html>`)

	card := doc.Find("#two")
	value, ok := FirstIn(card, []Candidate{{Selector: ".price"}})
	assert.True(t, ok)
	assert.Equal(t, "$19.99", value)
}
