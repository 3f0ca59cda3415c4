package links

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.amazon.com"

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDiscoverDeduplicatesByASIN(t *testing.T) {
	// Two anchors resolving to the same ASIN yield one entry, at the first
	// occurrence's position.
	doc := mustDoc(t, `
		<html><body>
			<div data-asin="B07ZPKBL6V"><a href="/dp/B07ZPKBL6V/ref=zg_1">first</a></div>
			<div data-asin="B07XJ8C8F5"><a href="/dp/B07XJ8C8F5/ref=zg_2">second</a></div>
			<div data-asin="B07ZPKBL6V"><a href="/dp/B07ZPKBL6V/ref=zg_3">duplicate</a></div>
		</body></html>`)

	links := Discover(doc, baseURL, "tag-20", 10)

	require.Len(t, links, 2)
	assert.Equal(t, "B07ZPKBL6V", links[0].ASIN)
	assert.Equal(t, "B07XJ8C8F5", links[1].ASIN)
}

func TestDiscoverRewritesToAffiliateURL(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<a href="/dp/B07ZPKBL6V/ref=zg_bs">product</a>
		</body></html>`)

	links := Discover(doc, baseURL, "87868584-20", 10)

	require.Len(t, links, 1)
	assert.Equal(t, "https://www.amazon.com/dp/B07ZPKBL6V/?tag=87868584-20", links[0].URL)
}

func TestDiscoverAbsolutizesRelativeHrefs(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<a href="/dp/B07ZPKBL6V">relative</a>
			<a href="https://www.amazon.com/dp/B07XJ8C8F5">absolute</a>
		</body></html>`)

	links := Discover(doc, baseURL, "t-20", 10)

	require.Len(t, links, 2)
	assert.Equal(t, "B07ZPKBL6V", links[0].ASIN)
	assert.Equal(t, "B07XJ8C8F5", links[1].ASIN)
}

func TestDiscoverCapsResultSet(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	asins := []string{
		"B000000001", "B000000002", "B000000003", "B000000004",
		"B000000005", "B000000006", "B000000007",
	}
	for _, asin := range asins {
		b.WriteString(`<a href="/dp/` + asin + `">x</a>`)
	}
	b.WriteString("</body></html>")

	links := Discover(mustDoc(t, b.String()), baseURL, "t-20", 5)

	require.Len(t, links, 5)
	assert.Equal(t, "B000000001", links[0].ASIN)
	assert.Equal(t, "B000000005", links[4].ASIN)
}

func TestDiscoverSkipsAnchorsWithoutASIN(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<a href="/dp/short">bad identifier</a>
			<a href="/dp/B07ZPKBL6V">good</a>
		</body></html>`)

	links := Discover(doc, baseURL, "t-20", 10)

	require.Len(t, links, 1)
	assert.Equal(t, "B07ZPKBL6V", links[0].ASIN)
}

func TestDiscoverDeals(t *testing.T) {
	doc := mustDoc(t, `
		<html><body>
			<a href="/deal/B00DEAL0001">nope, eleven chars</a>
			<a href="/deal/B00DEAL001">deal card</a>
			<a href="/deal/B00DEAL001?ref=x">duplicate card</a>
		</body></html>`)

	links := DiscoverDeals(doc, baseURL, 10)

	require.Len(t, links, 1)
	assert.Equal(t, "B00DEAL001", links[0].ASIN)
	assert.Equal(t, "https://www.amazon.com/deal/B00DEAL001", links[0].URL)
}
