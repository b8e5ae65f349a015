// Package memory implements blobstore.Store over an in-process map. It
// is the adapter for tests and ephemeral catalogs — nothing survives
// process exit.
package memory

import (
	"context"
	"sync"

	"github.com/jchristn/dedupe/internal/blobstore"
)

// Store is a sync.Map-backed blobstore.Store.
type Store struct {
	chunks sync.Map // string -> []byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

func (s *Store) WriteChunk(_ context.Context, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.chunks.Store(key, cp)
	return nil
}

func (s *Store) ReadChunk(_ context.Context, key string) ([]byte, error) {
	v, ok := s.chunks.Load(key)
	if !ok {
		return nil, blobstore.ErrChunkNotFound
	}
	data := v.([]byte)
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *Store) DeleteChunk(_ context.Context, key string) error {
	s.chunks.Delete(key)
	return nil
}

var _ blobstore.Store = (*Store)(nil)
