// Package scrape orchestrates the listing-to-store pipeline: fetch a listing
// page, discover product links, scrape each detail page, normalize the
// fields and merge the partial record into the store. One failed link never
// aborts a batch; one failed source never aborts a run.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/akikodev/deals-scraper/internal/extract"
	"github.com/akikodev/deals-scraper/internal/links"
	"github.com/akikodev/deals-scraper/internal/models"
	"github.com/akikodev/deals-scraper/internal/ratelimit"
	"github.com/akikodev/deals-scraper/internal/store"
)

// Fetcher is the fetch capability; it owns retries and request pacing.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// EventPublisher notifies downstream consumers of a completed sync.
type EventPublisher interface {
	PublishProductSynced(ctx context.Context, rec models.ProductRecord) error
}

type Options struct {
	BaseURL      string
	AffiliateTag string
	// Pause between successive detail-page fetches, distinct from the
	// fetcher's own pre-request delay.
	LinkDelayMin   time.Duration
	LinkDelayMax   time.Duration
	SourceDelayMin time.Duration
	SourceDelayMax time.Duration
}

type Pipeline struct {
	fetcher   Fetcher
	store     store.Store
	selectors extract.Selectors
	events    EventPublisher
	logger    *slog.Logger
	opts      Options
}

// NewPipeline wires the pipeline's collaborators explicitly; events may be
// nil to disable publishing.
func NewPipeline(f Fetcher, st store.Store, sel extract.Selectors, ev EventPublisher, opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:   f,
		store:     st,
		selectors: sel,
		events:    ev,
		logger:    logger.With("component", "scrape_pipeline"),
		opts:      opts,
	}
}

// Summary aggregates one orchestrator run.
type Summary struct {
	Synced  int
	Skipped int
	Failed  int
	// Links holds every monetized URL discovered during the run, in
	// document order per source.
	Links []string
}

// Run iterates the named sources in order with a randomized inter-source
// delay. Each source's records are tagged with its name on write.
func (p *Pipeline) Run(ctx context.Context, sources []Source) (Summary, error) {
	var summary Summary

	for i, src := range sources {
		if i > 0 {
			if err := ratelimit.Sleep(ctx, p.opts.SourceDelayMin, p.opts.SourceDelayMax); err != nil {
				return summary, err
			}
		}

		srcSummary := p.ScrapeSource(ctx, src)
		summary.Synced += srcSummary.Synced
		summary.Skipped += srcSummary.Skipped
		summary.Failed += srcSummary.Failed
		summary.Links = append(summary.Links, srcSummary.Links...)

		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	p.logger.Info("run complete",
		"synced", summary.Synced, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// ScrapeSource fetches one listing, discovers its product links and runs the
// product page pipeline per link. Failures are counted, not propagated.
func (p *Pipeline) ScrapeSource(ctx context.Context, src Source) Summary {
	var summary Summary
	logger := p.logger.With("source", src.Name)
	logger.Info("scraping source")

	discovered, err := p.discoverSource(ctx, src)
	if err != nil {
		logger.Error("failed to scrape listing", "error", err)
		summary.Failed++
		return summary
	}
	logger.Info("discovered links", "count", len(discovered))

	for i, link := range discovered {
		summary.Links = append(summary.Links, link.URL)

		if i > 0 {
			if err := ratelimit.Sleep(ctx, p.opts.LinkDelayMin, p.opts.LinkDelayMax); err != nil {
				return summary
			}
		}

		switch err := p.scrapeProduct(ctx, link, src.Name); {
		case err == nil:
			summary.Synced++
		case errors.Is(err, store.ErrMissingASIN):
			logger.Warn("skipped write, record has no identifier", "url", link.URL)
			summary.Skipped++
		default:
			// One failed product must not abort the batch.
			logger.Error("failed to scrape product", "asin", link.ASIN, "error", err)
			summary.Failed++
		}

		if ctx.Err() != nil {
			return summary
		}
	}

	return summary
}

// discoverSource returns the source's product links. Deal listings take the
// extra hop through deal cards first.
func (p *Pipeline) discoverSource(ctx context.Context, src Source) ([]models.ListingLink, error) {
	doc, err := p.fetchDocument(ctx, p.opts.BaseURL+src.Path)
	if err != nil {
		return nil, err
	}

	if !src.Deals {
		return links.Discover(doc, p.opts.BaseURL, p.opts.AffiliateTag, src.LinkCap), nil
	}

	dealCards := links.DiscoverDeals(doc, p.opts.BaseURL, src.LinkCap)
	var (
		out  []models.ListingLink
		seen = make(map[string]bool)
	)
	for _, card := range dealCards {
		if len(out) >= src.LinkCap {
			break
		}
		if err := ratelimit.Sleep(ctx, p.opts.LinkDelayMin, p.opts.LinkDelayMax); err != nil {
			return out, nil
		}

		dealDoc, err := p.fetchDocument(ctx, card.URL)
		if err != nil {
			p.logger.Warn("failed to fetch deal card", "url", card.URL, "error", err)
			continue
		}
		for _, l := range links.Discover(dealDoc, p.opts.BaseURL, p.opts.AffiliateTag, src.LinkCap) {
			if seen[l.ASIN] || len(out) >= src.LinkCap {
				continue
			}
			seen[l.ASIN] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// scrapeProduct fetches one detail page, extracts whatever fields the
// selectors still find, and merges the partial record into the store.
// Missing fields stay absent; they are recorded as-is, not treated as
// errors.
func (p *Pipeline) scrapeProduct(ctx context.Context, link models.ListingLink, source string) error {
	doc, err := p.fetchDocument(ctx, link.URL)
	if err != nil {
		return err
	}

	rec := models.NewProductRecord(link.ASIN)
	rec.Source = source

	if title, ok := extract.First(doc, p.selectors.Title); ok {
		rec.Title = &title
	}
	if raw, ok := extract.First(doc, p.selectors.Price); ok {
		if price, ok := extract.Price(raw); ok {
			rec.Price = &price
		}
	}
	if raw, ok := extract.First(doc, p.selectors.Rating); ok {
		if rating, ok := extract.Rating(raw); ok {
			rec.Rating = &rating
		}
	}
	if raw, ok := extract.First(doc, p.selectors.ReviewCount); ok {
		if count, ok := extract.ReviewCount(raw); ok {
			rec.ReviewCount = &count
		}
	}
	if img, ok := extract.First(doc, p.selectors.Image); ok {
		rec.ImageURL = &img
	}

	if err := p.store.Upsert(ctx, rec); err != nil {
		return err
	}

	p.logger.Info("synced product", "asin", rec.ASIN, "source", source,
		"has_title", rec.Title != nil, "has_price", rec.Price != nil)

	if p.events != nil {
		if err := p.events.PublishProductSynced(ctx, rec); err != nil {
			p.logger.Warn("failed to publish event", "asin", rec.ASIN, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
