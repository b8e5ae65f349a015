package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	d := New("/tmp/dedupe-test")
	if d.Root() != "/tmp/dedupe-test" {
		t.Errorf("expected root /tmp/dedupe-test, got %s", d.Root())
	}
}

func TestDefault(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if d.Root() == "" {
		t.Fatal("expected non-empty root")
	}
	if filepath.Base(d.Root()) != "dedupe" {
		t.Errorf("expected root to end with 'dedupe', got %s", d.Root())
	}
}

func TestPoolPath(t *testing.T) {
	d := New("/data")
	if got := d.PoolPath(); got != "/data/pool.db" {
		t.Errorf("got %s", got)
	}
}

func TestContainerPath(t *testing.T) {
	d := New("/data")
	if got := d.ContainerPath("prod"); got != "/data/containers/prod.db" {
		t.Errorf("got %s", got)
	}
}

func TestChunksPath(t *testing.T) {
	d := New("/data")
	if got := d.ChunksPath(); got != "/data/chunks" {
		t.Errorf("got %s", got)
	}
}

func TestEnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "dedupe")
	d := New(root)
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "containers"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}

	// Calling again should be idempotent.
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists (idempotent): %v", err)
	}
}
