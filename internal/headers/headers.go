// Package headers produces plausible browser request identities so successive
// requests don't share a uniform fingerprint.
package headers

import (
	"math/rand"
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
}

// Rotator hands out a full request header set with a user agent picked from a
// fixed pool. It holds no state beyond the pool itself.
type Rotator struct {
	userAgents []string
}

// NewRotator builds a rotator over the given pool; an empty pool falls back
// to the built-in browser identities.
func NewRotator(userAgents []string) *Rotator {
	if len(userAgents) == 0 {
		userAgents = defaultUserAgents
	}
	return &Rotator{userAgents: userAgents}
}

// Next returns the headers for one request.
func (r *Rotator) Next() map[string]string {
	ua := r.userAgents[rand.Intn(len(r.userAgents))]
	return map[string]string{
		"User-Agent":                ua,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "max-age=0",
	}
}
