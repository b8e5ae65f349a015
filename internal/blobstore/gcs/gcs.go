// Package gcs implements blobstore.Store against a Google Cloud Storage
// bucket via cloud.google.com/go/storage, using the chunk key as the
// object name.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/jchristn/dedupe/internal/blobstore"
)

// BucketHandle is the subset of *storage.BucketHandle the Store needs.
// Object returns the SDK's concrete *storage.ObjectHandle, so the Store
// always talks to a real or emulated GCS endpoint.
type BucketHandle interface {
	Object(name string) *storage.ObjectHandle
}

// Store is a blobstore.Store backed by one GCS bucket.
type Store struct {
	bucket BucketHandle
}

// New returns a Store against bucket.
func New(bucket BucketHandle) *Store {
	return &Store{bucket: bucket}
}

func (s *Store) WriteChunk(ctx context.Context, key string, data []byte) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs finalize object: %w", err)
	}
	return nil
}

func (s *Store) ReadChunk(ctx context.Context, key string) ([]byte, error) {
	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, blobstore.ErrChunkNotFound
		}
		return nil, fmt.Errorf("gcs open reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read object: %w", err)
	}
	return data, nil
}

func (s *Store) DeleteChunk(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete object: %w", err)
	}
	return nil
}

var _ blobstore.Store = (*Store)(nil)
