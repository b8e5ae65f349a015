package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Statistics implements C3's Statistics: aggregate counts and the overall
// deduplication ratio (spec.md §3's IndexStatistics). The ratio is defined
// as logical-bytes-stored-by-callers divided by physical-bytes-retained in
// the chunk store; with zero physical bytes (an empty catalog) both ratio
// fields report 0 rather than dividing by zero.
func (c *Catalog) Statistics(ctx context.Context) (Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Stats
	err := withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(original_length), 0) FROM objects`).
			Scan(&s.Objects, &s.LogicalBytes); err != nil {
			return fmt.Errorf("%w: aggregate objects: %w", ErrIO, err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(length), 0) FROM chunks`).
			Scan(&s.Chunks, &s.PhysicalBytes); err != nil {
			return fmt.Errorf("%w: aggregate chunks: %w", ErrIO, err)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	if s.PhysicalBytes > 0 {
		s.RatioX = float64(s.LogicalBytes) / float64(s.PhysicalBytes)
		s.RatioPct = (1 - float64(s.PhysicalBytes)/float64(s.LogicalBytes)) * 100
	}
	return s, nil
}
