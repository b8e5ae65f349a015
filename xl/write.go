package xl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/catalog"
	"github.com/jchristn/dedupe/internal/chunker"
)

// Write ingests data under key within the named container, exactly as
// WriteStream with an io.Reader over data.
func (p *Pool) Write(ctx context.Context, containerName, containerIndexPath, key string, data []byte) error {
	return p.WriteStream(ctx, containerName, containerIndexPath, key, int64(len(data)), bytes.NewReader(data))
}

// WriteStream ingests contentLength bytes read from src under key
// within the named container. Chunk upserts run in the pool catalog's
// transaction; the object and its object_map rows run in the
// container catalog's transaction — two transactions, acquired in the
// fixed pool-before-container lock order spec.md §5 requires. If the
// container-side insert fails after the pool-side commit, the upserted
// chunks' ref_counts are left incremented (an orphaned reservation, not
// a correctness violation: the chunks remain valid content-addressed
// bytes, merely over-counted; nothing later releases the extra count,
// so those chunks stay in the pool).
func (p *Pool) WriteStream(ctx context.Context, containerName, containerIndexPath, key string, contentLength int64, src io.Reader) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", dedupe.ErrInvalidArgument)
	}
	if contentLength < 0 {
		return fmt.Errorf("%w: content length must not be negative", dedupe.ErrInvalidArgument)
	}

	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return err
	}

	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(src, buf); err != nil && contentLength > 0 {
		return fmt.Errorf("%w: read source stream: %w", dedupe.ErrInvalidArgument, err)
	}

	if _, _, err := cat.LookupObject(ctx, key); err == nil {
		return fmt.Errorf("%w: %s", dedupe.ErrObjectAlreadyExists, key)
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return translatePoolErr(err)
	}

	chunks, err := chunker.Split(bytes.NewReader(buf), contentLength, p.chunkerParams())
	if err != nil {
		return fmt.Errorf("%w: split object into chunks: %w", dedupe.ErrInvalidArgument, err)
	}

	placements, err := p.upsertChunks(ctx, chunks)
	if err != nil {
		return err
	}

	wtx, err := cat.BeginWrite(ctx)
	if err != nil {
		return translatePoolErr(err)
	}
	defer wtx.Rollback()

	if err := wtx.InsertObject(key, contentLength, time.Now().UTC(), placements); err != nil {
		return translatePoolErr(err)
	}
	if err := wtx.Commit(); err != nil {
		return translatePoolErr(err)
	}
	return nil
}

// upsertChunks runs one pool-catalog transaction upserting every chunk,
// writing novel bytes to the shared blob backend before commit.
func (p *Pool) upsertChunks(ctx context.Context, chunks []chunker.Chunk) ([]catalog.Placement, error) {
	wtx, err := p.pool.BeginWrite(ctx)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	defer wtx.Rollback()

	placements := make([]catalog.Placement, 0, len(chunks))
	for _, c := range chunks {
		existed, err := wtx.UpsertChunk(c.Key, c.Length)
		if err != nil {
			return nil, translatePoolErr(err)
		}
		if !existed {
			if err := p.blobs.WriteChunk(ctx, c.Key, c.Data); err != nil {
				return nil, translateBlobErr(err, true)
			}
		}
		placements = append(placements, catalog.Placement{ChunkKey: c.Key, Length: c.Length, Position: c.Offset})
	}

	if err := wtx.Commit(); err != nil {
		return nil, translatePoolErr(err)
	}
	return placements, nil
}

func (p *Pool) chunkerParams() chunker.Params {
	cfg := p.pool.Config()
	return chunker.Params{
		MinSize:            cfg.MinChunkSize,
		MaxSize:            cfg.MaxChunkSize,
		ShiftCount:         cfg.ShiftCount,
		BoundaryCheckBytes: cfg.BoundaryCheckBytes,
	}
}
