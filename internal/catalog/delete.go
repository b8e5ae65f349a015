package catalog

import (
	"context"
	"fmt"
)

// DeleteObject implements C3's DeleteObject: decrements ref_count on every
// chunk the object references, deletes the object (object_map rows cascade
// via the foreign key), and deletes any chunk row whose ref_count reaches
// zero. It returns the keys of chunks that reached zero references — the
// delete path (C7) uses this list to tell the blob backend which chunk
// bodies are now safe to delete. Everything runs in one transaction under
// the catalog's write lock.
func (c *Catalog) DeleteObject(ctx context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin delete transaction: %w", ErrIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	obj, err := queryObject(ctx, tx, key)
	if err != nil {
		return nil, err
	}

	entries, err := queryObjectMap(ctx, tx, obj.ID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, e := range entries {
		counts[e.ChunkKey]++
	}

	var orphaned []string
	for chunkKey, n := range counts {
		res, err := tx.ExecContext(ctx, `UPDATE chunks SET ref_count = ref_count - ? WHERE key = ?`, n, chunkKey)
		if err != nil {
			return nil, fmt.Errorf("%w: decrement chunk ref_count: %w", ErrIO, err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return nil, fmt.Errorf("%w: chunk %q referenced by object %q not found in chunks table", ErrCorrupt, chunkKey, key)
		}

		var refCount int64
		if err := tx.QueryRowContext(ctx, `SELECT ref_count FROM chunks WHERE key = ?`, chunkKey).Scan(&refCount); err != nil {
			return nil, fmt.Errorf("%w: read chunk ref_count: %w", ErrIO, err)
		}
		if refCount < 0 {
			return nil, fmt.Errorf("%w: chunk %q ref_count went negative", ErrCorrupt, chunkKey)
		}
		if refCount == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE key = ?`, chunkKey); err != nil {
				return nil, fmt.Errorf("%w: delete orphaned chunk: %w", ErrIO, err)
			}
			orphaned = append(orphaned, chunkKey)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, obj.ID); err != nil {
		return nil, fmt.Errorf("%w: delete object: %w", ErrIO, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit delete: %w", ErrIO, err)
	}
	return orphaned, nil
}

// DeleteObjectRow implements the federated delete path's container-side
// half: it deletes the object and its object_map rows (which cascade)
// but never touches a chunks table — the federation wrapper runs chunk
// ref-count bookkeeping against the pool catalog separately, in a fixed
// pool-before-container lock order. It is a no-op, not an error, if key
// does not exist.
func (c *Catalog) DeleteObjectRow(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin delete transaction: %w", ErrIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	obj, err := queryObject(ctx, tx, key)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, obj.ID); err != nil {
		return fmt.Errorf("%w: delete object: %w", ErrIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit delete: %w", ErrIO, err)
	}
	return nil
}
