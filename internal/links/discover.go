// Package links scans listing pages for product detail links and rewrites
// them into monetized canonical URLs.
package links

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/akikodev/deals-scraper/internal/extract"
	"github.com/akikodev/deals-scraper/internal/models"
)

// Anchor selectors for product links across the listing templates. Deal
// pages link through /deal/ cards rather than straight to detail pages.
const (
	productAnchorSelector = `div[data-asin] a[href*="/dp/"], a[href*="/dp/"]`
	dealAnchorSelector    = `a[href*="/deal/"]`
)

// Discover scans the document in order for product detail links, keeps only
// anchors with a discoverable ASIN, rewrites each into the canonical
// affiliate URL and deduplicates by ASIN (first occurrence wins). The result
// is capped at limit entries.
func Discover(doc *goquery.Document, baseURL, affiliateTag string, limit int) []models.ListingLink {
	return discover(doc, productAnchorSelector, baseURL, affiliateTag, limit, canonicalURL)
}

// DiscoverDeals finds deal-card links on a deals listing. Deal URLs keep
// their own shape; the affiliate rewrite happens later, once the card leads
// to an actual detail page.
func DiscoverDeals(doc *goquery.Document, baseURL string, limit int) []models.ListingLink {
	return discover(doc, dealAnchorSelector, baseURL, "", limit, func(base, asin, _ string) string {
		return fmt.Sprintf("%s/deal/%s", base, asin)
	})
}

func discover(doc *goquery.Document, anchorSel, baseURL, tag string, limit int, canonical func(base, asin, tag string) string) []models.ListingLink {
	var links []models.ListingLink
	seen := make(map[string]bool)

	doc.Find(anchorSel).EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return true
		}

		full := absolutize(href, baseURL)
		asin, ok := extract.ASIN(full)
		if !ok || seen[asin] {
			return true
		}

		seen[asin] = true
		links = append(links, models.ListingLink{
			ASIN: asin,
			URL:  canonical(baseURL, asin, tag),
		})
		return len(links) < limit
	})

	return links
}

func canonicalURL(base, asin, tag string) string {
	return fmt.Sprintf("%s/dp/%s/?tag=%s", base, asin, tag)
}

func absolutize(href, baseURL string) string {
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return href
}
