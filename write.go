package dedupe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jchristn/dedupe/internal/catalog"
	"github.com/jchristn/dedupe/internal/chunker"
)

// Write ingests data under key, exactly as WriteStream with an
// bytes.NewReader over data. Fails with ErrObjectAlreadyExists if key
// already names a live object, ErrInvalidArgument for an empty key.
func (e *Engine) Write(ctx context.Context, key string, data []byte) error {
	return e.WriteStream(ctx, key, int64(len(data)), bytes.NewReader(data))
}

// WriteStream ingests contentLength bytes read from src under key,
// implementing C5 (spec.md §4.5): chunk, upsert each chunk (writing
// novel bytes to the blob backend before the transaction commits), then
// insert the object and its object_map rows — all in one transaction.
func (e *Engine) WriteStream(ctx context.Context, key string, contentLength int64, src io.Reader) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", ErrInvalidArgument)
	}
	if contentLength < 0 {
		return fmt.Errorf("%w: content length must not be negative", ErrInvalidArgument)
	}

	// The chunker needs random access (io.ReaderAt); buffer the source
	// once so callers can pass any io.Reader, matching spec.md §6's
	// "(content_length, readable_stream)" input shape.
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(src, buf); err != nil && contentLength > 0 {
		return fmt.Errorf("%w: read source stream: %w", ErrInvalidArgument, err)
	}

	if _, _, err := e.cat.LookupObject(ctx, key); err == nil {
		return fmt.Errorf("%w: %s", ErrObjectAlreadyExists, key)
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return translateCatalogErr(err)
	}

	chunks, err := chunker.Split(bytes.NewReader(buf), contentLength, e.chunkerParams())
	if err != nil {
		return fmt.Errorf("%w: split object into chunks: %w", ErrInvalidArgument, err)
	}

	wtx, err := e.cat.BeginWrite(ctx)
	if err != nil {
		return translateCatalogErr(err)
	}
	defer wtx.Rollback()

	placements := make([]catalog.Placement, 0, len(chunks))
	for _, c := range chunks {
		existed, err := wtx.UpsertChunk(c.Key, c.Length)
		if err != nil {
			return translateCatalogErr(err)
		}
		if !existed {
			if err := e.blobs.WriteChunk(ctx, c.Key, c.Data); err != nil {
				return translateBlobErr(err, true)
			}
		}
		placements = append(placements, catalog.Placement{ChunkKey: c.Key, Length: c.Length, Position: c.Offset})
	}

	if err := wtx.InsertObject(key, contentLength, time.Now().UTC(), placements); err != nil {
		return translateCatalogErr(err)
	}
	if err := wtx.Commit(); err != nil {
		return translateCatalogErr(err)
	}
	return nil
}

func (e *Engine) chunkerParams() chunker.Params {
	cfg := e.cat.Config()
	return chunker.Params{
		MinSize:            cfg.MinChunkSize,
		MaxSize:            cfg.MaxChunkSize,
		ShiftCount:         cfg.ShiftCount,
		BoundaryCheckBytes: cfg.BoundaryCheckBytes,
	}
}
