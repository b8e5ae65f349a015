package dedupe

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"
)

func TestWriteThenGetRoundTrips(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	data := make([]byte, 5000)
	rand.New(rand.NewSource(1)).Read(data)

	if err := e.Write(ctx, "obj1", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := e.GetFull(ctx, "obj1")
	if err != nil {
		t.Fatalf("GetFull: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(data))
	}
}

func TestWriteEmptyObject(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.Write(ctx, "empty", nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := e.GetFull(ctx, "empty")
	if err != nil {
		t.Fatalf("GetFull: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected 0 bytes, got %d", len(got))
	}
}

func TestWriteRejectsEmptyKey(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Write(context.Background(), "", []byte("x")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Write with empty key = %v, want ErrInvalidArgument", err)
	}
}

func TestWriteRejectsDuplicateKey(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.Write(ctx, "dup", []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := e.Write(ctx, "dup", []byte("world")); !errors.Is(err, ErrObjectAlreadyExists) {
		t.Fatalf("second Write = %v, want ErrObjectAlreadyExists", err)
	}
}

func TestWriteDeduplicatesIdenticalContent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	data := make([]byte, 3000)
	rand.New(rand.NewSource(7)).Read(data)

	if err := e.Write(ctx, "a", data); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := e.Write(ctx, "b", data); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	stats, err := e.IndexStats(ctx)
	if err != nil {
		t.Fatalf("IndexStats: %v", err)
	}
	if stats.Objects != 2 {
		t.Fatalf("Objects = %d, want 2", stats.Objects)
	}
	if stats.LogicalBytes != 6000 {
		t.Fatalf("LogicalBytes = %d, want 6000", stats.LogicalBytes)
	}
	if stats.PhysicalBytes >= stats.LogicalBytes {
		t.Fatalf("PhysicalBytes = %d, want < LogicalBytes (%d) given identical content", stats.PhysicalBytes, stats.LogicalBytes)
	}
}
