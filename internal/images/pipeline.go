// Package images drains the store's backlog of products whose images have
// not been rehosted yet: download, optimize, upload, mark processed. Units
// within a batch run concurrently; batches run strictly one after another.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akikodev/deals-scraper/internal/models"
	"github.com/akikodev/deals-scraper/internal/storage"
	"github.com/akikodev/deals-scraper/internal/store"
)

// Downloader fetches one URL's bytes with its own bounded retry policy.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	BatchSize   int
	Concurrency int
	MaxRetries  int
	RetryDelay  time.Duration
	MaxDim      int
	JPEGQuality int
	BatchDelay  time.Duration
	KeyPrefix   string
}

type Pipeline struct {
	store      store.Store
	bucket     storage.Bucket
	downloader Downloader
	results    *storage.ResultsLog
	logger     *slog.Logger
	opts       Options
}

func NewPipeline(st store.Store, bucket storage.Bucket, dl Downloader, results *storage.ResultsLog, opts Options, logger *slog.Logger) *Pipeline {
	if opts.BatchSize < 1 {
		opts.BatchSize = 100
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 5
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.MaxDim < 1 {
		opts.MaxDim = 800
	}
	if opts.JPEGQuality < 1 {
		opts.JPEGQuality = 85
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "products"
	}
	return &Pipeline{
		store:      st,
		bucket:     bucket,
		downloader: dl,
		results:    results,
		logger:     logger.With("component", "image_pipeline"),
		opts:       opts,
	}
}

// Run pulls batches of unprocessed records until the store has none left.
// Batch N+1 is only requested after every unit of batch N has finished.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := p.store.UnprocessedImages(ctx, p.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to query unprocessed images: %w", err)
		}
		if len(batch) == 0 {
			p.logger.Info("no more products to process")
			return nil
		}

		p.logger.Info("processing batch", "size", len(batch))
		results := p.ProcessBatch(ctx, batch)

		success := 0
		for _, r := range results {
			if r.Status == models.UploadSuccess {
				success++
			}
		}
		p.logger.Info("batch complete", "success", success, "total", len(results))

		if p.results != nil {
			if err := p.results.Append(results); err != nil {
				p.logger.Error("failed to append results log", "error", err)
			}
		}

		// A batch with zero successes would be re-selected verbatim on the
		// next query; stop instead of spinning on permanent failures. A
		// later run re-selects them after the upstream data changes.
		if success == 0 {
			p.logger.Warn("batch made no progress, stopping", "failed", len(results))
			return nil
		}

		if p.opts.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.opts.BatchDelay):
			}
		}
	}
}

// ProcessBatch runs the batch's units under a bounded worker pool and joins
// before returning. A failed unit is isolated: it contributes a failed
// result and nothing else.
func (p *Pipeline) ProcessBatch(ctx context.Context, batch []models.ProductRecord) []models.UploadResult {
	var (
		mu      sync.Mutex
		results []models.UploadResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, rec := range batch {
		rec := rec
		g.Go(func() error {
			res := p.processUnit(ctx, rec)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			// Unit failures are carried in the result, never as an error
			// that would cancel sibling units.
			return nil
		})
	}
	g.Wait()

	return results
}

func (p *Pipeline) processUnit(ctx context.Context, rec models.ProductRecord) models.UploadResult {
	start := time.Now()
	logger := p.logger.With("asin", rec.ASIN)

	fail := func(kind string, err error) models.UploadResult {
		logger.Error("image unit failed", "kind", kind, "error", err)
		return models.UploadResult{
			ASIN:       rec.ASIN,
			Status:     models.UploadFailed,
			ErrorKind:  kind,
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	data, err := p.downloader.Fetch(ctx, *rec.ImageURL)
	if err != nil {
		return fail(models.ErrKindDownloadFailed, err)
	}

	data = Optimize(data, p.opts.MaxDim, p.opts.JPEGQuality)

	publicURL, err := p.upload(ctx, rec.ASIN, data)
	if err != nil {
		return fail(models.ErrKindUploadFailed, err)
	}

	update := models.ProductRecord{
		ASIN:          rec.ASIN,
		ImageUploaded: models.BoolPtr(true),
		ImageURL:      &publicURL,
	}
	if err := p.store.Upsert(ctx, update); err != nil {
		return fail(models.ErrKindUploadFailed, err)
	}

	logger.Info("image rehosted", "url", publicURL)
	return models.UploadResult{
		ASIN:       rec.ASIN,
		Status:     models.UploadSuccess,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// upload pushes the bytes with a bounded retry loop; backoff grows with the
// attempt count.
func (p *Pipeline) upload(ctx context.Context, asin string, data []byte) (string, error) {
	key := fmt.Sprintf("%s/%s.jpg", p.opts.KeyPrefix, asin)
	metadata := map[string]string{
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
		"asin":        asin,
	}

	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.opts.RetryDelay * time.Duration(attempt-1)):
			}
		}

		url, err := p.bucket.Put(ctx, key, data, "image/jpeg", metadata)
		if err == nil {
			return url, nil
		}
		p.logger.Warn("upload attempt failed", "asin", asin, "attempt", attempt, "error", err)
		lastErr = err
	}
	return "", lastErr
}
