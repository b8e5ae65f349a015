package dedupe

import (
	"context"
	"errors"

	"github.com/jchristn/dedupe/internal/catalog"
)

// Delete removes an object and, for any chunk whose reference count
// drops to zero as a result, its blob. Deleting a key that does not
// exist is a no-op (spec.md §4.7): no error is returned. A failure to
// remove an orphaned blob is logged, not propagated — the catalog row
// is already gone and is the source of truth for what is "live".
func (e *Engine) Delete(ctx context.Context, key string) error {
	orphaned, err := e.cat.DeleteObject(ctx, key)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil
		}
		return translateCatalogErr(err)
	}

	for _, chunkKey := range orphaned {
		if err := e.blobs.DeleteChunk(ctx, chunkKey); err != nil {
			e.logger.Warn("orphaned chunk delete failed", "chunk_key", chunkKey, "error", err)
		}
	}
	return nil
}
