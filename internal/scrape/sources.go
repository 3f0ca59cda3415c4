package scrape

// Source is one named listing to scrape. Deal listings need an extra hop
// (deal card, then detail page) before product extraction.
type Source struct {
	Name    string
	Path    string
	LinkCap int
	Deals   bool
}

// DefaultSources are the listings the site is built from. The deals source
// gets a slightly larger cap because deal cards fan out to fewer products
// than they promise.
func DefaultSources(linkCap int) []Source {
	return []Source{
		{Name: "amazon_best_sellers", Path: "/Best-Sellers/zgbs", LinkCap: linkCap},
		{Name: "amazon_movers_and_shakers", Path: "/gp/movers-and-shakers", LinkCap: linkCap},
		{Name: "amazon_new_releases", Path: "/gp/new-releases", LinkCap: linkCap},
		{Name: "amazon_deals", Path: "/gp/goldbox", LinkCap: linkCap + 2, Deals: true},
	}
}
