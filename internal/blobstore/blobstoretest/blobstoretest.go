// Package blobstoretest provides a shared conformance test suite for
// blobstore.Store implementations. Each backend (memory, file, s3,
// azureblob, gcs) wires this suite to verify it satisfies the full
// Store contract.
package blobstoretest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jchristn/dedupe/internal/blobstore"
)

// TestStore runs the full conformance suite against a Store
// implementation. newStore must return a fresh, empty store for each
// sub-test.
func TestStore(t *testing.T, newStore func(t *testing.T) blobstore.Store) {
	t.Run("WriteThenRead", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		data := []byte("hello, chunk")
		if err := s.WriteChunk(ctx, "k1", data); err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}

		got, err := s.ReadChunk(ctx, "k1")
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadChunk = %q, want %q", got, data)
		}
	})

	t.Run("ReadMissingIsNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.ReadChunk(context.Background(), "missing")
		if !errors.Is(err, blobstore.ErrChunkNotFound) {
			t.Fatalf("ReadChunk = %v, want ErrChunkNotFound", err)
		}
	})

	t.Run("WriteEmptyChunk", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.WriteChunk(ctx, "empty", []byte{}); err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}
		got, err := s.ReadChunk(ctx, "empty")
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ReadChunk = %q, want empty", got)
		}
	})

	t.Run("OverwriteSameKeyIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.WriteChunk(ctx, "k1", []byte("first")); err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}
		if err := s.WriteChunk(ctx, "k1", []byte("first")); err != nil {
			t.Fatalf("WriteChunk (repeat): %v", err)
		}
		got, err := s.ReadChunk(ctx, "k1")
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		if string(got) != "first" {
			t.Errorf("ReadChunk = %q, want %q", got, "first")
		}
	})

	t.Run("DeleteThenReadIsNotFound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.WriteChunk(ctx, "k1", []byte("data")); err != nil {
			t.Fatalf("WriteChunk: %v", err)
		}
		if err := s.DeleteChunk(ctx, "k1"); err != nil {
			t.Fatalf("DeleteChunk: %v", err)
		}
		if _, err := s.ReadChunk(ctx, "k1"); !errors.Is(err, blobstore.ErrChunkNotFound) {
			t.Fatalf("ReadChunk after delete = %v, want ErrChunkNotFound", err)
		}
	})

	t.Run("DeleteMissingIsNotAnError", func(t *testing.T) {
		s := newStore(t)
		if err := s.DeleteChunk(context.Background(), "never-written"); err != nil {
			t.Fatalf("DeleteChunk (missing): %v", err)
		}
	})

	t.Run("MultipleChunksAreIndependent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		chunks := map[string][]byte{
			"a": []byte("alpha"),
			"b": []byte("beta"),
			"c": []byte("gamma"),
		}
		for k, v := range chunks {
			if err := s.WriteChunk(ctx, k, v); err != nil {
				t.Fatalf("WriteChunk(%s): %v", k, err)
			}
		}
		if err := s.DeleteChunk(ctx, "b"); err != nil {
			t.Fatalf("DeleteChunk(b): %v", err)
		}
		for k, v := range chunks {
			got, err := s.ReadChunk(ctx, k)
			if k == "b" {
				if !errors.Is(err, blobstore.ErrChunkNotFound) {
					t.Errorf("ReadChunk(b) = %v, want ErrChunkNotFound", err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("ReadChunk(%s): %v", k, err)
			}
			if !bytes.Equal(got, v) {
				t.Errorf("ReadChunk(%s) = %q, want %q", k, got, v)
			}
		}
	})
}
