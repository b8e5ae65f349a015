package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LookupObject implements C3's LookupObject: returns the object and its
// object_map rows in ascending chunk_position order, or ErrNotFound.
func (c *Catalog) LookupObject(ctx context.Context, key string) (*Object, []ObjectMapEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var obj *Object
	var entries []ObjectMapEntry
	err := withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		o, err := queryObject(ctx, tx, key)
		if err != nil {
			return err
		}
		obj = o

		entries, err = queryObjectMap(ctx, tx, obj.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if err := verifyCover(obj, entries); err != nil {
		return nil, nil, err
	}
	return obj, entries, nil
}

func queryObject(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, key string) (*Object, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, key, original_length, compressed_length, chunk_count, created_utc FROM objects WHERE key = ?`, key)

	var obj Object
	var created string
	if err := row.Scan(&obj.ID, &obj.Key, &obj.OriginalLength, &obj.CompressedLength, &obj.ChunkCount, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: lookup object: %w", ErrIO, err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("%w: parse created_utc: %w", ErrCorrupt, err)
	}
	obj.CreatedUTC = t
	return &obj, nil
}

func queryObjectMap(ctx context.Context, tx *sql.Tx, objectID int64) ([]ObjectMapEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT chunk_key, chunk_length, chunk_position FROM object_map WHERE object_id = ? ORDER BY chunk_position ASC`, objectID)
	if err != nil {
		return nil, fmt.Errorf("%w: query object_map: %w", ErrIO, err)
	}
	defer rows.Close()

	var entries []ObjectMapEntry
	for rows.Next() {
		var e ObjectMapEntry
		if err := rows.Scan(&e.ChunkKey, &e.Length, &e.Position); err != nil {
			return nil, fmt.Errorf("%w: scan object_map row: %w", ErrIO, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate object_map: %w", ErrIO, err)
	}
	return entries, nil
}

// verifyCover checks spec.md §3's ObjectMap invariant: ordered by offset,
// the rows form a strictly increasing, contiguous, gapless cover of
// [0, original_length).
func verifyCover(obj *Object, entries []ObjectMapEntry) error {
	var pos int64
	for _, e := range entries {
		if e.Position != pos {
			return fmt.Errorf("%w: object %q: gap or overlap at position %d (expected %d)", ErrCorrupt, obj.Key, e.Position, pos)
		}
		pos += e.Length
	}
	if pos != obj.OriginalLength {
		return fmt.Errorf("%w: object %q: map covers %d bytes, want %d", ErrCorrupt, obj.Key, pos, obj.OriginalLength)
	}
	return nil
}
