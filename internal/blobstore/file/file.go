// Package file implements blobstore.Store as one file per chunk under a
// root directory, with fsynced writes. It watches the root with
// fsnotify to invalidate an in-process existence cache when a chunk
// file is removed from outside the process; the catalog's ref-count
// bookkeeping remains the authoritative source of truth, this cache is
// a best-effort read-path optimization only.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/logging"
)

// Store is a directory-backed blobstore.Store: one regular file per
// chunk, named after the chunk's hex key.
type Store struct {
	dir     string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu     sync.RWMutex
	exists map[string]bool // best-effort existence cache, invalidated by fsnotify
}

// New creates (if absent) dir and returns a Store rooted there. The
// returned Store starts an fsnotify watch goroutine on dir; call Close
// to stop it.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create blobstore directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch blobstore directory: %w", err)
	}

	s := &Store{
		dir:     dir,
		logger:  logging.Scoped(logger, "blobstore-file"),
		watcher: watcher,
		exists:  make(map[string]bool),
	}
	go s.watchLoop()
	return s, nil
}

func (s *Store) watchLoop() {
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Create) {
				key := filepath.Base(ev.Name)
				s.mu.Lock()
				delete(s.exists, key)
				s.mu.Unlock()
				if ev.Has(fsnotify.Remove) {
					s.logger.Info("chunk file removed externally", "key", key)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("fsnotify watch error", "error", err)
		}
	}
}

// Close stops the directory watch goroutine.
func (s *Store) Close() error {
	return s.watcher.Close()
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *Store) WriteChunk(_ context.Context, key string, data []byte) error {
	p := s.path(key)
	tmp := p + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create chunk temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write chunk: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fsync chunk: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close chunk temp file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename chunk into place: %w", err)
	}

	s.mu.Lock()
	s.exists[key] = true
	s.mu.Unlock()
	return nil
}

func (s *Store) ReadChunk(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	known, cached := s.exists[key]
	s.mu.RUnlock()
	if cached && !known {
		return nil, blobstore.ErrChunkNotFound
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.mu.Lock()
			s.exists[key] = false
			s.mu.Unlock()
			return nil, blobstore.ErrChunkNotFound
		}
		return nil, fmt.Errorf("read chunk: %w", err)
	}

	s.mu.Lock()
	s.exists[key] = true
	s.mu.Unlock()
	return data, nil
}

func (s *Store) DeleteChunk(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete chunk: %w", err)
	}
	s.mu.Lock()
	delete(s.exists, key)
	s.mu.Unlock()
	return nil
}

var _ blobstore.Store = (*Store)(nil)
