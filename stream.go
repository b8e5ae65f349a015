package dedupe

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/jchristn/dedupe/internal/catalog"
)

// stream is the seekable view over an object's bytes: an ordered map of
// chunk placements, a read cursor, and a single cached chunk to avoid
// re-fetching the same blob on sequential byte-at-a-time reads.
type stream struct {
	engine  *Engine
	length  int64
	entries []catalog.ObjectMapEntry

	pos int64

	cachedIndex int
	cachedData  []byte
}

func (e *Engine) newStream(length int64, entries []catalog.ObjectMapEntry) SeekableStream {
	return &stream{engine: e, length: length, entries: entries, cachedIndex: -1}
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
		return 0, fmt.Errorf("%w: invalid seek whence %d", ErrInvalidArgument, whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("%w: negative seek position", ErrInvalidArgument)
	}
	s.pos = target
	return s.pos, nil
}

func (s *stream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	idx := s.locate(s.pos)
	entry := s.entries[idx]

	data, err := s.chunkData(idx, entry)
	if err != nil {
		return 0, err
	}

	withinChunk := s.pos - entry.Position
	n := copy(p, data[withinChunk:])
	s.pos += int64(n)
	return n, nil
}

// locate returns the index of the object_map entry covering byte
// position pos, via binary search over the entries' (sorted) Position.
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

// fetchChunk reads one chunk from the blob backend, coalescing
// concurrent reads of the same chunk key across streams via the
// engine's singleflight group.
func (s *stream) fetchChunk(key string) ([]byte, error) {
	v, err, _ := s.engine.readGroup.Do(key, func() (interface{}, error) {
		return s.engine.blobs.ReadChunk(context.Background(), key)
	})
	if err != nil {
		return nil, translateBlobErr(err, false)
	}
	return v.([]byte), nil
}
