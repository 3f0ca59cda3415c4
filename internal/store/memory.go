package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akikodev/deals-scraper/internal/models"
)

// Memory is an in-process Store with the same merge semantics as the
// Postgres implementation. It backs tests and DB-less local runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.ProductRecord
	order   map[string]int
	nextSeq int
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]models.ProductRecord),
		order:   make(map[string]int),
	}
}

func (s *Memory) Upsert(ctx context.Context, rec models.ProductRecord) error {
	if rec.ASIN == "" {
		return ErrMissingASIN
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec.LastUpdated = &now

	existing, ok := s.records[rec.ASIN]
	if !ok {
		if rec.Timestamp == nil {
			rec.Timestamp = &now
		}
		s.records[rec.ASIN] = rec
		s.order[rec.ASIN] = s.nextSeq
		s.nextSeq++
		return nil
	}

	merged := merge(existing, rec)
	s.records[rec.ASIN] = merged
	return nil
}

// merge overlays the present fields of in onto base. The creation timestamp
// is never replaced.
func merge(base, in models.ProductRecord) models.ProductRecord {
	out := base
	if in.Title != nil {
		out.Title = in.Title
	}
	if in.Price != nil {
		out.Price = in.Price
	}
	if in.Rating != nil {
		out.Rating = in.Rating
	}
	if in.ReviewCount != nil {
		out.ReviewCount = in.ReviewCount
	}
	if in.ImageURL != nil {
		out.ImageURL = in.ImageURL
	}
	if in.ImageUploaded != nil {
		out.ImageUploaded = in.ImageUploaded
	}
	if in.Source != "" {
		out.Source = in.Source
	}
	if in.LastUpdated != nil {
		out.LastUpdated = in.LastUpdated
	}
	return out
}

func (s *Memory) Get(ctx context.Context, asin string) (models.ProductRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[asin]
	return rec, ok, nil
}

func (s *Memory) UnprocessedImages(ctx context.Context, limit int) ([]models.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.ProductRecord
	for _, rec := range s.records {
		if rec.ImageURL == nil {
			continue
		}
		if rec.ImageUploaded != nil && *rec.ImageUploaded {
			continue
		}
		records = append(records, rec)
	}

	// Stable insertion order so batches are deterministic.
	sort.Slice(records, func(i, j int) bool {
		return s.order[records[i].ASIN] < s.order[records[j].ASIN]
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Memory) Close() {}

// Len reports the number of stored records.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
