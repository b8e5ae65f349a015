package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
)

func TestDeleteObjectOrphansUnsharedChunks(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	insertObject(t, cat, "obj1", []Placement{
		{ChunkKey: "a", Length: 4, Position: 0},
		{ChunkKey: "b", Length: 4, Position: 4},
	})

	orphaned, err := cat.DeleteObject(context.Background(), "obj1")
	if err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	sort.Strings(orphaned)
	if len(orphaned) != 2 || orphaned[0] != "a" || orphaned[1] != "b" {
		t.Errorf("orphaned = %v, want [a b]", orphaned)
	}

	if _, _, err := cat.LookupObject(context.Background(), "obj1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("object still present after delete: %v", err)
	}
}

func TestDeleteObjectKeepsSharedChunkAlive(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	shared := []Placement{{ChunkKey: "shared", Length: 4, Position: 0}}
	insertObject(t, cat, "obj1", shared)
	insertObject(t, cat, "obj2", shared)

	orphaned, err := cat.DeleteObject(context.Background(), "obj1")
	if err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	if len(orphaned) != 0 {
		t.Errorf("orphaned = %v, want none (chunk still referenced by obj2)", orphaned)
	}

	orphaned, err = cat.DeleteObject(context.Background(), "obj2")
	if err != nil {
		t.Fatalf("DeleteObject (obj2): %v", err)
	}
	if len(orphaned) != 1 || orphaned[0] != "shared" {
		t.Errorf("orphaned = %v, want [shared]", orphaned)
	}
}

func TestDeleteObjectNotFound(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	_, err := cat.DeleteObject(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteObject: got %v, want ErrNotFound", err)
	}
}

func TestDeleteObjectRowRemovesObjectButLeavesChunks(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	placements := []Placement{{ChunkKey: "shared", Length: 4, Position: 0}}
	insertObject(t, cat, "obj1", placements)

	if err := cat.DeleteObjectRow(context.Background(), "obj1"); err != nil {
		t.Fatalf("DeleteObjectRow: %v", err)
	}

	if _, _, err := cat.LookupObject(context.Background(), "obj1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("object still present after DeleteObjectRow: %v", err)
	}

	// The chunks table is untouched: federated ref-count bookkeeping lives
	// in the pool catalog, not here.
	var refCount int64
	if err := cat.db.QueryRow(`SELECT ref_count FROM chunks WHERE key = ?`, "shared").Scan(&refCount); err != nil {
		t.Fatalf("query chunk row: %v", err)
	}
	if refCount != 1 {
		t.Errorf("ref_count = %d, want 1 (unchanged)", refCount)
	}
}

func TestDeleteObjectRowMissingKeyIsNoOp(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	if err := cat.DeleteObjectRow(context.Background(), "missing"); err != nil {
		t.Fatalf("DeleteObjectRow: got %v, want nil", err)
	}
}
