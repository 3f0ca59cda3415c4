// Package extract pulls typed product fields out of semi-structured retail
// HTML. Each logical field has an ordered list of candidate selectors tried
// in sequence, so extraction survives markup drift as long as one candidate
// still matches.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is one selector to try for a field. An empty Attr reads the
// node's text; otherwise the named attribute is read.
type Candidate struct {
	Selector string
	Attr     string
}

// First returns the value of the first candidate that matches, in order. A
// matched node whose attribute is missing or whose text is empty counts as
// no match and the next candidate is tried. Candidates after the first hit
// are never queried.
func First(doc *goquery.Document, candidates []Candidate) (string, bool) {
	for _, c := range candidates {
		sel := doc.Find(c.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if c.Attr == "" {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text, true
			}
			continue
		}
		if val, ok := sel.Attr(c.Attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val, true
			}
		}
	}
	return "", false
}

// FirstIn is First scoped to a selection instead of the whole document, used
// when walking per-product listing cards.
func FirstIn(root *goquery.Selection, candidates []Candidate) (string, bool) {
	for _, c := range candidates {
		sel := root.Find(c.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if c.Attr == "" {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				return text, true
			}
			continue
		}
		if val, ok := sel.Attr(c.Attr); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val, true
			}
		}
	}
	return "", false
}

// Selectors carries the per-field candidate lists. The literal strings are
// tied to one retailer's historically observed markup and go stale on their
// own schedule, so they are configuration: swap the value, keep the
// mechanism.
type Selectors struct {
	Title       []Candidate
	Price       []Candidate
	Rating      []Candidate
	ReviewCount []Candidate
	Image       []Candidate
}

// AmazonSelectors covers the detail page plus the search-result and deal
// card templates observed on amazon.com.
func AmazonSelectors() Selectors {
	return Selectors{
		Title: []Candidate{
			{Selector: "#productTitle"},
			{Selector: "span.a-size-large.product-title-word-break"},
			{Selector: "div.p13n-sc-truncate-desktop-type2"},
			{Selector: "div._cDEzb_p13n-sc-css-line-clamp-3_g3dy1"},
		},
		Price: []Candidate{
			{Selector: "span._cDEzb_p13n-sc-price_3mJ9Z"},
			{Selector: "span.a-price span.a-offscreen"},
			{Selector: "#priceblock_dealprice"},
			{Selector: "#priceblock_ourprice"},
			{Selector: "span.a-price-whole"},
		},
		Rating: []Candidate{
			{Selector: "span.a-icon-alt"},
			{Selector: "#acrPopover", Attr: "title"},
		},
		ReviewCount: []Candidate{
			{Selector: "#acrCustomerReviewText"},
			{Selector: "span.a-size-small"},
		},
		Image: []Candidate{
			{Selector: "#landingImage", Attr: "src"},
			{Selector: "img.s-image", Attr: "src"},
			{Selector: "div[data-asin] img", Attr: "src"},
		},
	}
}
