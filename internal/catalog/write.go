package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// WriteTx is one serialized, transactional mutation of a catalog: the
// "upsert chunk + insert object_map row + insert object" unit spec.md
// §4.5/§9 requires to share a single transaction. BeginWrite acquires the
// catalog's exclusive write lock; Commit or Rollback releases it — every
// WriteTx must end in exactly one of the two.
type WriteTx struct {
	cat  *Catalog
	tx   *sql.Tx
	ctx  context.Context
	done bool
}

// BeginWrite acquires the catalog's write lock and opens a transaction.
// The caller must Commit or Rollback the returned WriteTx.
func (c *Catalog) BeginWrite(ctx context.Context) (*WriteTx, error) {
	c.mu.Lock()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: begin write transaction: %w", ErrIO, err)
	}
	return &WriteTx{cat: c, tx: tx, ctx: ctx}, nil
}

// UpsertChunk implements C3's UpsertChunk contract: increments ref_count
// if key already exists, otherwise inserts it with ref_count=1. existed
// is the sole signal the caller (the write path, C5) uses to decide
// whether the blob backend must store the chunk's bytes.
func (w *WriteTx) UpsertChunk(key string, length int64) (existed bool, err error) {
	res, err := w.tx.ExecContext(w.ctx, `UPDATE chunks SET ref_count = ref_count + 1 WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("%w: upsert chunk: %w", ErrIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: upsert chunk rows affected: %w", ErrIO, err)
	}
	if n > 0 {
		return true, nil
	}
	if _, err := w.tx.ExecContext(w.ctx, `INSERT INTO chunks (key, length, ref_count) VALUES (?, ?, 1)`, key, length); err != nil {
		return false, fmt.Errorf("%w: insert chunk: %w", ErrIO, err)
	}
	return false, nil
}

// DecrementChunk is DecrementChunkBy(key, 1): it decrements key's
// ref_count by one and, if that reaches zero,
// deletes the chunk row and reports zero=true so the caller knows the
// chunk's blob is now safe to remove.
func (w *WriteTx) DecrementChunk(key string) (zero bool, err error) {
	return w.DecrementChunkBy(key, 1)
}

// DecrementChunkBy decrements key's ref_count by n (the number of times
// the deleted object referenced it) and, if that reaches zero, deletes
// the chunk row and reports zero=true so the caller knows the chunk's
// blob is now safe to remove. Callers must aggregate n across every
// object_map entry for key before calling this, mirroring the way
// UpsertChunk is called once per entry on the write side — decrementing
// once per unique key by 1 would under-count an object that references
// the same chunk at multiple positions.
func (w *WriteTx) DecrementChunkBy(key string, n int64) (zero bool, err error) {
	res, err := w.tx.ExecContext(w.ctx, `UPDATE chunks SET ref_count = ref_count - ? WHERE key = ?`, n, key)
	if err != nil {
		return false, fmt.Errorf("%w: decrement chunk ref_count: %w", ErrIO, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return false, fmt.Errorf("%w: chunk %q not found", ErrCorrupt, key)
	}

	var refCount int64
	if err := w.tx.QueryRowContext(w.ctx, `SELECT ref_count FROM chunks WHERE key = ?`, key).Scan(&refCount); err != nil {
		return false, fmt.Errorf("%w: read chunk ref_count: %w", ErrIO, err)
	}
	if refCount < 0 {
		return false, fmt.Errorf("%w: chunk %q ref_count went negative", ErrCorrupt, key)
	}
	if refCount == 0 {
		if _, err := w.tx.ExecContext(w.ctx, `DELETE FROM chunks WHERE key = ?`, key); err != nil {
			return false, fmt.Errorf("%w: delete orphaned chunk: %w", ErrIO, err)
		}
		return true, nil
	}
	return false, nil
}

// ObjectExists reports whether key already names a live object, within
// this transaction.
func (w *WriteTx) ObjectExists(key string) (bool, error) {
	var n int
	if err := w.tx.QueryRowContext(w.ctx, `SELECT COUNT(1) FROM objects WHERE key = ?`, key).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: check object existence: %w", ErrIO, err)
	}
	return n > 0, nil
}

// InsertObject inserts the object row and its object_map rows in this
// transaction. It fails with ErrObjectAlreadyExists if key is already
// live — callers should also check ObjectExists/LookupObject up front,
// but this check is the one that's actually race-free since it runs
// inside the same transaction as the insert.
func (w *WriteTx) InsertObject(key string, originalLength int64, createdUTC time.Time, placements []Placement) error {
	exists, err := w.ObjectExists(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrObjectAlreadyExists
	}

	res, err := w.tx.ExecContext(w.ctx,
		`INSERT INTO objects (key, original_length, compressed_length, chunk_count, created_utc) VALUES (?, ?, ?, ?, ?)`,
		key, originalLength, originalLength, len(placements), createdUTC.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: insert object: %w", ErrIO, err)
	}
	objectID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: object id: %w", ErrIO, err)
	}

	for _, pl := range placements {
		if _, err := w.tx.ExecContext(w.ctx,
			`INSERT INTO object_map (object_id, chunk_key, chunk_length, chunk_position) VALUES (?, ?, ?, ?)`,
			objectID, pl.ChunkKey, pl.Length, pl.Position); err != nil {
			return fmt.Errorf("%w: insert object_map row: %w", ErrIO, err)
		}
	}
	return nil
}

// Commit commits the transaction and releases the write lock.
func (w *WriteTx) Commit() error {
	defer w.release()
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrIO, err)
	}
	return nil
}

// Rollback aborts the transaction and releases the write lock. It is
// safe to call after Commit has already succeeded (a no-op in that case)
// so callers can unconditionally `defer wtx.Rollback()` guard a write.
func (w *WriteTx) Rollback() error {
	if w.done {
		return nil
	}
	defer w.release()
	if err := w.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("%w: rollback: %w", ErrIO, err)
	}
	return nil
}

func (w *WriteTx) release() {
	if w.done {
		return
	}
	w.done = true
	w.cat.mu.Unlock()
}
