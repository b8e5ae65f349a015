package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestEnumerateOrdersByKeyAndWindows(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	for _, k := range []string{"c.txt", "a.txt", "b.txt"} {
		insertObject(t, cat, k, []Placement{{ChunkKey: k, Length: 1, Position: 0}})
	}

	keys, total, err := cat.Enumerate(context.Background(), "", 0, 100)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"a.txt", "b.txt", "c.txt"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %s, want %s", i, keys[i], k)
		}
	}

	keys, total, err = cat.Enumerate(context.Background(), "", 1, 1)
	if err != nil {
		t.Fatalf("Enumerate (windowed): %v", err)
	}
	if total != 3 {
		t.Fatalf("windowed total = %d, want 3", total)
	}
	if len(keys) != 1 || keys[0] != "b.txt" {
		t.Errorf("windowed keys = %v, want [b.txt]", keys)
	}
}

func TestEnumeratePrefixFilter(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	for _, k := range []string{"logs/a", "logs/b", "images/c"} {
		insertObject(t, cat, k, []Placement{{ChunkKey: k, Length: 1, Position: 0}})
	}

	keys, total, err := cat.Enumerate(context.Background(), "logs/", 0, 100)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if total != 2 || len(keys) != 2 {
		t.Fatalf("got %d/%d keys, want 2/2", len(keys), total)
	}
}

func TestEnumeratePrefixWithLikeMetacharacters(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	insertObject(t, cat, "100%_done", []Placement{{ChunkKey: "x", Length: 1, Position: 0}})
	insertObject(t, cat, "100Xdone", []Placement{{ChunkKey: "y", Length: 1, Position: 0}})

	keys, total, err := cat.Enumerate(context.Background(), "100%_", 0, 100)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if total != 1 || keys[0] != "100%_done" {
		t.Errorf("got keys=%v total=%d, want [100%%_done]/1 (literal match only)", keys, total)
	}
}
