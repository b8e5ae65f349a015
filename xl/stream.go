package xl

import (
	"context"
	"fmt"
	"io"
	"sort"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/catalog"
)

// stream is the federated counterpart of the single-catalog engine's
// stream: it reads chunk bytes from the pool's shared blob backend, but
// the object_map it walks comes from a container catalog.
type stream struct {
	pool    *Pool
	length  int64
	entries []catalog.ObjectMapEntry

	pos int64

	cachedIndex int
	cachedData  []byte
}

func (p *Pool) newStream(length int64, entries []catalog.ObjectMapEntry) dedupe.SeekableStream {
	return &stream{pool: p, length: length, entries: entries, cachedIndex: -1}
}

func (s *stream) Length() int64 { return s.length }

func (s *stream) Close() error { return nil }

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.pos + offset
	case io.SeekEnd:
		target = s.length + offset
	default:
		return 0, fmt.Errorf("%w: invalid seek whence %d", dedupe.ErrInvalidArgument, whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("%w: negative seek position", dedupe.ErrInvalidArgument)
	}
	s.pos = target
	return s.pos, nil
}

func (s *stream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	var n int
	for n < len(p) && s.pos < s.length {
		idx := s.locate(s.pos)
		entry := s.entries[idx]

		data, err := s.chunkData(idx, entry)
		if err != nil {
			return n, err
		}

		withinChunk := s.pos - entry.Position
		m := copy(p[n:], data[withinChunk:])
		if m == 0 {
			break
		}
		s.pos += int64(m)
		n += m
	}
	return n, nil
}

func (s *stream) locate(pos int64) int {
	return sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Position+s.entries[i].Length > pos
	})
}

func (s *stream) chunkData(idx int, entry catalog.ObjectMapEntry) ([]byte, error) {
	if s.cachedIndex == idx {
		return s.cachedData, nil
	}

	data, err := s.fetchChunk(entry.ChunkKey)
	if err != nil {
		return nil, err
	}

	s.cachedIndex = idx
	s.cachedData = data
	return data, nil
}

// fetchChunk reads one chunk from the pool's shared blob backend,
// coalescing concurrent reads of the same chunk key across containers
// via the pool's singleflight group.
func (s *stream) fetchChunk(key string) ([]byte, error) {
	v, err, _ := s.pool.readGroup.Do(key, func() (interface{}, error) {
		return s.pool.blobs.ReadChunk(context.Background(), key)
	})
	if err != nil {
		return nil, translateBlobErr(err, false)
	}
	return v.([]byte), nil
}
