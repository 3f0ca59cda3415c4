package models

import (
	"time"
)

// ProductRecord is one scraped product, keyed by ASIN. Optional fields are
// pointers so a partial record only carries what extraction actually found;
// the store merges present fields over the existing document and leaves
// absent ones untouched.
type ProductRecord struct {
	ASIN          string     `json:"asin"`
	Title         *string    `json:"title,omitempty"`
	Price         *string    `json:"price,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	ReviewCount   *int       `json:"review_count,omitempty"`
	ImageURL      *string    `json:"image_url,omitempty"`
	ImageUploaded *bool      `json:"image_uploaded,omitempty"`
	Source        string     `json:"source,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}

// ListingLink is a product link discovered on a listing page. It only lives
// for the duration of one scan and is never persisted.
type ListingLink struct {
	ASIN string
	URL  string
}

// UploadResultStatus is the terminal state of one image pipeline unit.
type UploadResultStatus string

const (
	UploadSuccess UploadResultStatus = "success"
	UploadFailed  UploadResultStatus = "failed"
)

// Error kinds carried by failed upload results.
const (
	ErrKindDownloadFailed = "download_failed"
	ErrKindUploadFailed   = "upload_failed"
)

// UploadResult is the outcome of one image pipeline unit. Results are
// accumulated per batch and appended to the results log; only the
// image_uploaded/image_url fields ever flow back into a ProductRecord.
type UploadResult struct {
	ASIN       string             `json:"asin"`
	Status     UploadResultStatus `json:"status"`
	ErrorKind  string             `json:"error,omitempty"`
	DurationMs int64              `json:"duration_ms"`
}

// NewProductRecord returns a record with both timestamps set to now and the
// image not yet processed.
func NewProductRecord(asin string) ProductRecord {
	now := time.Now().UTC()
	uploaded := false
	return ProductRecord{
		ASIN:          asin,
		ImageUploaded: &uploaded,
		Timestamp:     &now,
		LastUpdated:   &now,
	}
}

func StringPtr(s string) *string    { return &s }
func Float64Ptr(f float64) *float64 { return &f }
func IntPtr(i int) *int             { return &i }
func BoolPtr(b bool) *bool          { return &b }
