// Package chunker implements the streaming, content-defined splitter (C2):
// a fixed-minimum, forced-maximum algorithm whose cut points depend only on
// content, never on position or on chunks already emitted. That property
// is what makes identical content produce identical chunk keys wherever it
// appears, which is the basis for cross-object deduplication.
package chunker

import (
	"errors"
	"fmt"
	"io"

	"github.com/jchristn/dedupe/internal/digest"
)

// Params mirrors the four immutable fields of a catalog's chunking
// configuration. The same window also doubles as the zero-byte count
// passed to digest.IsBoundary: BoundaryCheckBytes bytes are read at each
// candidate cut position, MD5'd, and the same number of leading digest
// bytes must be zero for the position to be a boundary.
type Params struct {
	MinSize            int64
	MaxSize            int64
	ShiftCount         int64
	BoundaryCheckBytes int64
}

// Validate checks the invariants spec.md §3 places on CatalogConfig.
func (p Params) Validate() error {
	if p.MinSize <= 0 {
		return fmt.Errorf("%w: min_chunk_size must be positive", ErrInvalidParams)
	}
	if p.MaxSize <= p.MinSize {
		return fmt.Errorf("%w: max_chunk_size must exceed min_chunk_size", ErrInvalidParams)
	}
	if p.ShiftCount < 1 {
		return fmt.Errorf("%w: shift_count must be at least 1", ErrInvalidParams)
	}
	if p.BoundaryCheckBytes < 1 {
		return fmt.Errorf("%w: boundary_check_bytes must be at least 1", ErrInvalidParams)
	}
	if p.BoundaryCheckBytes > int64(digest.Size) {
		return fmt.Errorf("%w: boundary_check_bytes cannot exceed %d", ErrInvalidParams, digest.Size)
	}
	if p.MinSize <= p.BoundaryCheckBytes {
		return fmt.Errorf("%w: min_chunk_size must exceed boundary_check_bytes", ErrInvalidParams)
	}
	return nil
}

// ErrInvalidParams is returned by Params.Validate and New for out-of-bound
// chunking parameters.
var ErrInvalidParams = errors.New("chunker: invalid parameters")

// Chunk is one emitted, content-defined chunk of an input stream.
type Chunk struct {
	Key    string // lowercase hex MD5 of Data; chunk identity
	Offset int64  // start position within the logical stream
	Length int64  // == len(Data)
	Data   []byte
}

// Chunker splits a finite, random-access byte source into Chunks. It never
// requires the whole source resident: it reads ahead within the current
// candidate window but never rewinds past the current chunk's start.
type Chunker struct {
	src    io.ReaderAt
	length int64
	params Params

	pos  int64 // start of the next chunk to emit
	done bool
}

// New constructs a Chunker over src, which holds exactly length bytes
// starting at offset 0. src is typically a *bytes.Reader or an os.File.
func New(src io.ReaderAt, length int64, params Params) (*Chunker, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{src: src, length: length, params: params}, nil
}

// Next returns the next chunk in increasing offset order, or io.EOF once
// the source has been fully covered. A zero-length source yields io.EOF
// immediately with no chunks at all (an empty object has an empty,
// trivially-covering object map).
func (c *Chunker) Next() (Chunk, error) {
	if c.done || c.pos >= c.length {
		return Chunk{}, io.EOF
	}

	p := c.params
	start := c.pos
	remaining := c.length - start

	if remaining <= p.MinSize {
		return c.emit(start, c.length)
	}

	candidate := start + p.MinSize - p.BoundaryCheckBytes
	window := make([]byte, p.BoundaryCheckBytes)

	for {
		if candidate+p.BoundaryCheckBytes > c.length {
			// Stream ends before a boundary was found and before a forced
			// cut would have triggered: the remainder becomes the final
			// (possibly short) chunk.
			return c.emit(start, c.length)
		}

		if err := c.readFull(window, candidate); err != nil {
			return Chunk{}, err
		}
		if digest.IsBoundary(window, int(p.BoundaryCheckBytes)) {
			return c.emit(start, candidate+p.BoundaryCheckBytes)
		}

		candidate += p.ShiftCount
		if candidate+p.BoundaryCheckBytes > start+p.MaxSize {
			return c.emit(start, start+p.MaxSize)
		}
	}
}

func (c *Chunker) readFull(buf []byte, offset int64) error {
	n, err := c.src.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("chunker: read window at offset %d: %w", offset, err)
}

func (c *Chunker) emit(start, end int64) (Chunk, error) {
	data := make([]byte, end-start)
	if len(data) > 0 {
		if _, err := c.src.ReadAt(data, start); err != nil && !errors.Is(err, io.EOF) {
			return Chunk{}, fmt.Errorf("chunker: read chunk [%d,%d): %w", start, end, err)
		}
	}
	c.pos = end
	if end >= c.length {
		c.done = true
	}
	return Chunk{
		Key:    digest.Hex(data),
		Offset: start,
		Length: int64(len(data)),
		Data:   data,
	}, nil
}

// Split drains src entirely into a slice of Chunks. It is a convenience
// wrapper over Next for callers that don't need streaming; both engine
// write paths call it on their fully buffered source.
func Split(src io.ReaderAt, length int64, params Params) ([]Chunk, error) {
	ck, err := New(src, length, params)
	if err != nil {
		return nil, err
	}
	var out []Chunk
	for {
		chunk, err := ck.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, chunk)
	}
}
