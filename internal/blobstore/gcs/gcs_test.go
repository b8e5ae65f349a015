package gcs

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/blobstore/blobstoretest"
)

// TestStoreConformance runs the shared blobstore conformance suite
// against a real GCS client pointed at a local emulator
// (https://cloud.google.com/sdk/gcloud/reference/beta/emulators/storage).
// It is skipped unless STORAGE_EMULATOR_HOST is set, since the SDK's
// *storage.ObjectHandle is a concrete type with no fake-friendly seam.
func TestStoreConformance(t *testing.T) {
	endpoint := os.Getenv("STORAGE_EMULATOR_HOST")
	if endpoint == "" {
		t.Skip("STORAGE_EMULATOR_HOST not set; skipping gcs conformance suite")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx,
		option.WithEndpoint(endpoint),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("storage.NewClient: %v", err)
	}
	defer client.Close()

	bucket := client.Bucket("dedupe-blobstore-test")
	if err := bucket.Create(ctx, "test-project", nil); err != nil {
		t.Fatalf("bucket.Create: %v", err)
	}

	blobstoretest.TestStore(t, func(t *testing.T) blobstore.Store {
		return New(bucket)
	})
}
