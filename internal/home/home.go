// Package home resolves the on-disk layout used by the dedupe CLI when it
// is pointed at a federated (pool) deployment rather than a single catalog
// file.
//
// Layout:
//
//	<root>/
//	  pool.db              (pool catalog: chunk table + container descriptors)
//	  containers/
//	    <container-name>.db (one container catalog per registered container)
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir represents a federation home directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns a Dir using the platform-appropriate default location:
//   - Linux:   ~/.config/dedupe
//   - macOS:   ~/Library/Application Support/dedupe
//   - Windows: %APPDATA%/dedupe
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "dedupe")}, nil
}

// Root returns the home directory path.
func (d Dir) Root() string {
	return d.root
}

// PoolPath returns the path to the pool catalog file.
func (d Dir) PoolPath() string {
	return filepath.Join(d.root, "pool.db")
}

// ContainerPath returns the path to a named container's catalog file.
func (d Dir) ContainerPath(containerName string) string {
	return filepath.Join(d.root, "containers", containerName+".db")
}

// ChunksPath returns the path to the shared blob store directory used by
// every catalog under this home.
func (d Dir) ChunksPath() string {
	return filepath.Join(d.root, "chunks")
}

// EnsureExists creates the home directory and its containers/ subdirectory
// (and parents) if they don't exist.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(filepath.Join(d.root, "containers"), 0o750); err != nil {
		return fmt.Errorf("create home directory %s: %w", d.root, err)
	}
	return nil
}
