package dedupe

import (
	"path/filepath"
	"testing"

	"github.com/jchristn/dedupe/internal/blobstore/memory"
)

// testConfig mirrors spec.md §8's concrete scenario table: small enough
// that a handful of kilobytes of test data produce several chunks.
func testConfig() Config {
	return Config{MinChunkSize: 4, MaxChunkSize: 16, ShiftCount: 1, BoundaryCheckBytes: 2}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	e, err := Create(path, testConfig(), memory.New(), Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}
