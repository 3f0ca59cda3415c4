// Package store persists product records with upsert-merge semantics:
// fields present in an incoming partial record overwrite the stored values,
// absent fields are left untouched. Repeated scrapes accumulate fields
// instead of destroying them.
package store

import (
	"context"
	"errors"

	"github.com/akikodev/deals-scraper/internal/models"
)

// ErrMissingASIN is returned when an upsert arrives without an identifier.
// Callers report it as a skipped write; it is an expected outcome of partial
// extraction, not a run-level failure.
var ErrMissingASIN = errors.New("product record has no ASIN")

type Store interface {
	// Upsert merges the partial record into the document keyed by its ASIN,
	// creating it if absent. The per-document merge is atomic at the store.
	Upsert(ctx context.Context, rec models.ProductRecord) error

	// Get returns the stored record, or ok=false when the ASIN is unknown.
	Get(ctx context.Context, asin string) (models.ProductRecord, bool, error)

	// UnprocessedImages returns up to limit records that carry an image URL
	// but have not had their image rehosted yet.
	UnprocessedImages(ctx context.Context, limit int) ([]models.ProductRecord, error)

	Close()
}
