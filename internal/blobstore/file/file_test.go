package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/blobstore/blobstoretest"
	"github.com/jchristn/dedupe/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	blobstoretest.TestStore(t, func(t *testing.T) blobstore.Store {
		return newTestStore(t)
	})
}

func TestExternalDeletionInvalidatesCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteChunk(ctx, "k1", []byte("data")); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if _, err := s.ReadChunk(ctx, "k1"); err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}

	if err := os.Remove(filepath.Join(s.dir, "k1")); err != nil {
		t.Fatalf("remove chunk file externally: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := s.ReadChunk(ctx, "k1")
		if errors.Is(err, blobstore.ErrChunkNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("ReadChunk never observed externally deleted chunk as missing")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
