package dedupe

import (
	"context"
	"testing"
)

func TestIndexStatsEmptyCatalog(t *testing.T) {
	e := newTestEngine(t)
	stats, err := e.IndexStats(context.Background())
	if err != nil {
		t.Fatalf("IndexStats: %v", err)
	}
	if stats.Objects != 0 || stats.Chunks != 0 {
		t.Fatalf("empty catalog stats = %+v, want all zero", stats)
	}
	if stats.RatioX != 0 || stats.RatioPct != 0 {
		t.Fatalf("empty catalog ratios = %+v, want zero (no division by zero)", stats)
	}
}

func TestIndexStatsReflectsWrites(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	writeTestObject(t, e, "a", 2000, 20)
	writeTestObject(t, e, "b", 3000, 21)

	stats, err := e.IndexStats(ctx)
	if err != nil {
		t.Fatalf("IndexStats: %v", err)
	}
	if stats.Objects != 2 {
		t.Fatalf("Objects = %d, want 2", stats.Objects)
	}
	if stats.LogicalBytes != 5000 {
		t.Fatalf("LogicalBytes = %d, want 5000", stats.LogicalBytes)
	}
	if stats.Chunks == 0 {
		t.Fatal("Chunks = 0, want > 0")
	}
}
