package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStatisticsEmptyCatalog(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	s, err := cat.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if s.Objects != 0 || s.Chunks != 0 || s.RatioX != 0 || s.RatioPct != 0 {
		t.Errorf("Statistics = %+v, want all zero", s)
	}
}

func TestStatisticsReflectsDedup(t *testing.T) {
	cat := mustCreate(t, filepath.Join(t.TempDir(), "c.db"))
	shared := []Placement{{ChunkKey: "shared", Length: 10, Position: 0}}
	insertObject(t, cat, "obj1", shared)
	insertObject(t, cat, "obj2", shared)

	s, err := cat.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if s.Objects != 2 {
		t.Errorf("Objects = %d, want 2", s.Objects)
	}
	if s.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1 (deduplicated)", s.Chunks)
	}
	if s.LogicalBytes != 20 {
		t.Errorf("LogicalBytes = %d, want 20", s.LogicalBytes)
	}
	if s.PhysicalBytes != 10 {
		t.Errorf("PhysicalBytes = %d, want 10", s.PhysicalBytes)
	}
	if s.RatioX != 2 {
		t.Errorf("RatioX = %f, want 2", s.RatioX)
	}
	if s.RatioPct != 50 {
		t.Errorf("RatioPct = %f, want 50", s.RatioPct)
	}
}
