// Package storage covers the two persisted side effects outside the document
// store: rehosted product images in an object bucket and the append-only
// results log for image batch runs.
package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// Bucket is the object storage capability: write bytes under a key, make
// them publicly readable, hand back the public URL.
type Bucket interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (string, error)
}

// GCSBucket uploads into a Google Cloud Storage bucket, the rehosting target
// the product site serves images from.
type GCSBucket struct {
	client *gcs.Client
	bucket string
}

func NewGCSBucket(ctx context.Context, bucket string) (*GCSBucket, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSBucket{client: client, bucket: bucket}, nil
}

func (b *GCSBucket) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (string, error) {
	obj := b.client.Bucket(b.bucket).Object(key)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", key, err)
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("failed to make object %s public: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, key), nil
}

func (b *GCSBucket) Close() error {
	return b.client.Close()
}
