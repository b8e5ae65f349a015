package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func insertObject(t *testing.T, cat *Catalog, key string, placements []Placement) {
	t.Helper()
	ctx := context.Background()
	wtx, err := cat.BeginWrite(ctx)
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	defer wtx.Rollback()

	var total int64
	for _, p := range placements {
		if _, err := wtx.UpsertChunk(p.ChunkKey, p.Length); err != nil {
			t.Fatalf("UpsertChunk: %v", err)
		}
		total += p.Length
	}
	if err := wtx.InsertObject(key, total, time.Now(), placements); err != nil {
		t.Fatalf("InsertObject: %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestLookupObjectReturnsOrderedMap(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	placements := []Placement{
		{ChunkKey: "a", Length: 4, Position: 0},
		{ChunkKey: "b", Length: 4, Position: 4},
		{ChunkKey: "c", Length: 2, Position: 8},
	}
	insertObject(t, cat, "obj1", placements)

	obj, entries, err := cat.LookupObject(context.Background(), "obj1")
	if err != nil {
		t.Fatalf("LookupObject: %v", err)
	}
	if obj.OriginalLength != 10 || obj.ChunkCount != 3 {
		t.Errorf("object = %+v, want length=10 chunk_count=3", obj)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.ChunkKey != placements[i].ChunkKey || e.Position != placements[i].Position {
			t.Errorf("entry %d = %+v, want %+v", i, e, placements[i])
		}
	}
}

func TestLookupObjectNotFound(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	_, _, err := cat.LookupObject(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LookupObject: got %v, want ErrNotFound", err)
	}
}

func TestLookupObjectEmptyObjectHasNoEntries(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	insertObject(t, cat, "empty", nil)

	obj, entries, err := cat.LookupObject(context.Background(), "empty")
	if err != nil {
		t.Fatalf("LookupObject: %v", err)
	}
	if obj.OriginalLength != 0 || len(entries) != 0 {
		t.Errorf("object = %+v, entries = %v, want empty", obj, entries)
	}
}
