package xl

import (
	"context"
	"path/filepath"
	"testing"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/blobstore/memory"
	"github.com/jchristn/dedupe/internal/catalog"
)

func testConfig() dedupe.Config {
	return dedupe.Config{MinChunkSize: 4, MaxChunkSize: 16, ShiftCount: 1, BoundaryCheckBytes: 2}
}

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pool.db")
	p, err := CreatePool(path, testConfig(), memory.New(), Options{})
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func (p *Pool) containerIndexPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".db")
}

func TestWriteImplicitlyRegistersContainer(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()
	idx := p.containerIndexPath(t, "c1")

	if err := p.Write(ctx, "c1", idx, "obj", []byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ok, err := p.ContainerExists(ctx, "c1")
	if err != nil {
		t.Fatalf("ContainerExists: %v", err)
	}
	if !ok {
		t.Fatal("container was not auto-registered by Write")
	}
}

func TestWriteThenGetRoundTrips(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()
	idx := p.containerIndexPath(t, "c1")
	data := []byte("the quick brown fox jumps over the lazy dog, repeated many times over")

	if err := p.Write(ctx, "c1", idx, "obj", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	obj, err := p.Get(ctx, "c1", idx, "obj")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer obj.Stream.Close()

	got := make([]byte, obj.Length)
	if _, err := obj.Stream.Read(got); err != nil {
		t.Fatalf("Stream.Read: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, data)
	}
}

func TestChunksSharedAcrossContainers(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()
	idxA := p.containerIndexPath(t, "a")
	idxB := p.containerIndexPath(t, "b")

	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	if err := p.Write(ctx, "a", idxA, "obj", data); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := p.Write(ctx, "b", idxB, "obj", data); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	stats, err := p.PoolStats(ctx)
	if err != nil {
		t.Fatalf("PoolStats: %v", err)
	}
	if stats.Objects != 2 {
		t.Fatalf("Objects = %d, want 2", stats.Objects)
	}
	if stats.PhysicalBytes >= stats.LogicalBytes {
		t.Fatalf("PhysicalBytes = %d, want < LogicalBytes (%d) given identical content across containers", stats.PhysicalBytes, stats.LogicalBytes)
	}
}

func TestDeleteObjectKeepsSharedChunks(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()
	idxA := p.containerIndexPath(t, "a")
	idxB := p.containerIndexPath(t, "b")

	data := make([]byte, 2500)
	for i := range data {
		data[i] = byte(i % 199)
	}
	if err := p.Write(ctx, "a", idxA, "obj", data); err != nil {
		t.Fatalf("Write a: %v", err)
	}
	if err := p.Write(ctx, "b", idxB, "obj", data); err != nil {
		t.Fatalf("Write b: %v", err)
	}

	if err := p.Delete(ctx, "a", idxA, "obj"); err != nil {
		t.Fatalf("Delete a/obj: %v", err)
	}

	obj, err := p.Get(ctx, "b", idxB, "obj")
	if err != nil {
		t.Fatalf("Get b/obj after deleting a/obj: %v", err)
	}
	if obj.Length != int64(len(data)) {
		t.Fatalf("Length = %d, want %d", obj.Length, len(data))
	}
}

func TestListObjectsAcrossContainers(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		idx := p.containerIndexPath(t, name)
		if err := p.Write(ctx, name, idx, "obj-"+name, []byte("payload-"+name)); err != nil {
			t.Fatalf("Write %s: %v", name, err)
		}
	}

	results, err := p.ListObjectsAcrossContainers(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("ListObjectsAcrossContainers: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d container results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("container %q result error: %v", r.Container, r.Err)
		}
		if len(r.Result.Objects) != 1 {
			t.Fatalf("container %q: got %d objects, want 1", r.Container, len(r.Result.Objects))
		}
	}
}

func TestDecrementChunksAggregatesRepeatedChunkKeys(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()

	wtx, err := p.pool.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	// Simulate a write that referenced the same chunk at two positions
	// within one object, the way upsertChunks calls UpsertChunk once per
	// occurrence.
	if _, err := wtx.UpsertChunk("rep", 4); err != nil {
		t.Fatalf("UpsertChunk: %v", err)
	}
	if _, err := wtx.UpsertChunk("rep", 4); err != nil {
		t.Fatalf("UpsertChunk (second occurrence): %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	entries := []catalog.ObjectMapEntry{
		{ChunkKey: "rep", Length: 4, Position: 0},
		{ChunkKey: "rep", Length: 4, Position: 4},
	}
	orphaned, err := p.decrementChunks(ctx, entries)
	if err != nil {
		t.Fatalf("decrementChunks: %v", err)
	}
	if len(orphaned) != 1 || orphaned[0] != "rep" {
		t.Fatalf("orphaned = %v, want [rep] (both references should cancel out)", orphaned)
	}
}

func TestRemoveContainerDeletesItsObjects(t *testing.T) {
	p := newTestPool(t)
	ctx := context.Background()
	idx := p.containerIndexPath(t, "c1")

	if err := p.Write(ctx, "c1", idx, "obj", []byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.RemoveContainer(ctx, "c1"); err != nil {
		t.Fatalf("RemoveContainer: %v", err)
	}

	ok, err := p.ContainerExists(ctx, "c1")
	if err != nil {
		t.Fatalf("ContainerExists: %v", err)
	}
	if ok {
		t.Fatal("container still registered after RemoveContainer")
	}
}
