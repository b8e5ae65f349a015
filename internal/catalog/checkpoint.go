package catalog

import (
	"context"
	"fmt"
)

// Checkpoint runs a WAL checkpoint, flushing the write-ahead log into
// the main database file. Purely an operational convenience for the
// optional scheduled maintenance task — never required for correctness.
func (c *Catalog) Checkpoint(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.db.ExecContext(ctx, `PRAGMA wal_checkpoint(PASSIVE)`); err != nil {
		return fmt.Errorf("%w: wal checkpoint: %w", ErrIO, err)
	}
	return nil
}
