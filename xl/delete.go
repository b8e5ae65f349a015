package xl

import (
	"context"
	"errors"

	"github.com/jchristn/dedupe/internal/catalog"
)

// Delete removes an object from the named container and, in the pool
// catalog, decrements every chunk it referenced — deleting the blob for
// any chunk whose ref_count reaches zero. Deleting a key that does not
// exist is a no-op.
func (p *Pool) Delete(ctx context.Context, containerName, containerIndexPath, key string) error {
	cat, err := p.containerCatalog(ctx, containerName, containerIndexPath)
	if err != nil {
		return err
	}
	return p.deleteObject(ctx, cat, key)
}

// deleteObject applies §4.7 delete semantics for key against a specific,
// already-resolved container catalog: the object and its object_map rows
// come from cat, but the chunk ref_counts and orphan cleanup happen in
// the pool catalog, acquired in pool-before-container order.
func (p *Pool) deleteObject(ctx context.Context, cat *catalog.Catalog, key string) error {
	_, entries, err := cat.LookupObject(ctx, key)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil
		}
		return translatePoolErr(err)
	}

	orphaned, err := p.decrementChunks(ctx, entries)
	if err != nil {
		return err
	}

	if err := cat.DeleteObjectRow(ctx, key); err != nil {
		return translatePoolErr(err)
	}

	for _, chunkKey := range orphaned {
		if err := p.blobs.DeleteChunk(ctx, chunkKey); err != nil {
			p.logger.Warn("orphaned chunk delete failed", "chunk_key", chunkKey, "error", err)
		}
	}
	return nil
}

// decrementChunks runs one pool-catalog transaction decrementing the
// ref_count of every chunk in entries, returning the keys of any chunk
// whose count reached zero (and was removed from the chunks table).
// Occurrences of the same chunk key within entries are aggregated and
// decremented together, matching upsertChunks' one-UpsertChunk-call-per-
// occurrence accounting on the write side.
func (p *Pool) decrementChunks(ctx context.Context, entries []catalog.ObjectMapEntry) ([]string, error) {
	wtx, err := p.pool.BeginWrite(ctx)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	defer wtx.Rollback()

	counts := make(map[string]int64, len(entries))
	for _, e := range entries {
		counts[e.ChunkKey]++
	}

	var orphaned []string
	for chunkKey, n := range counts {
		zero, err := wtx.DecrementChunkBy(chunkKey, n)
		if err != nil {
			return nil, translatePoolErr(err)
		}
		if zero {
			orphaned = append(orphaned, chunkKey)
		}
	}

	if err := wtx.Commit(); err != nil {
		return nil, translatePoolErr(err)
	}
	return orphaned, nil
}
