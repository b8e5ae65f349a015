package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Enumerate implements C3's Enumerate: objects whose key begins with
// prefix (empty prefix matches everything), ordered by key ascending,
// windowed by [start, start+max). total is the full match count before
// windowing, for the caller to compute pagination/has-more.
func (c *Catalog) Enumerate(ctx context.Context, prefix string, start, max int64) (keys []string, total int64, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	like := escapeLikePrefix(prefix) + "%"

	err = withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		if e := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM objects WHERE key LIKE ? ESCAPE '\' AND substr(key, 1, length(?)) = ?`,
			like, prefix, prefix).Scan(&total); e != nil {
			return fmt.Errorf("%w: count objects: %w", ErrIO, e)
		}

		rows, e := tx.QueryContext(ctx,
			`SELECT key FROM objects WHERE key LIKE ? ESCAPE '\' AND substr(key, 1, length(?)) = ? ORDER BY key ASC LIMIT ? OFFSET ?`,
			like, prefix, prefix, max, start)
		if e != nil {
			return fmt.Errorf("%w: query objects: %w", ErrIO, e)
		}
		defer rows.Close()

		for rows.Next() {
			var k string
			if e := rows.Scan(&k); e != nil {
				return fmt.Errorf("%w: scan object key: %w", ErrIO, e)
			}
			keys = append(keys, k)
		}
		if e := rows.Err(); e != nil {
			return fmt.Errorf("%w: iterate object keys: %w", ErrIO, e)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return keys, total, nil
}

// escapeLikePrefix escapes SQL LIKE metacharacters in a literal prefix so
// arbitrary object-key prefixes (which may contain '%' or '_') are matched
// literally rather than as wildcards.
func escapeLikePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix)
}
