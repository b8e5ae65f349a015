package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ContainerDescriptor is one row of a pool catalog's container registry
// (spec.md §4.9's federated shape): the container's name and the path to
// its own, separate container catalog.
type ContainerDescriptor struct {
	Name      string
	IndexPath string
}

// RegisterContainer adds a container descriptor to a pool catalog. It is
// the pool-catalog analogue of InsertObject: pool-only, exercised solely
// by the xl package.
func (c *Catalog) RegisterContainer(ctx context.Context, name, indexPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO containers (container_name, container_index_path) VALUES (?, ?)`, name, indexPath)
	if err != nil {
		if isUniqueConstraint(err) {
			return fmt.Errorf("%w: %s", ErrContainerAlreadyExists, name)
		}
		return fmt.Errorf("%w: register container: %w", ErrIO, err)
	}
	return nil
}

// RemoveContainer deletes a container descriptor from a pool catalog.
func (c *Catalog) RemoveContainer(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, `DELETE FROM containers WHERE container_name = ?`, name)
	if err != nil {
		return fmt.Errorf("%w: remove container: %w", ErrIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: remove container rows affected: %w", ErrIO, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrContainerNotFound, name)
	}
	return nil
}

// ContainerExists reports whether name is registered in a pool catalog.
func (c *Catalog) ContainerExists(ctx context.Context, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM containers WHERE container_name = ?`, name).Scan(&n)
	})
	if err != nil {
		return false, fmt.Errorf("%w: check container existence: %w", ErrIO, err)
	}
	return n > 0, nil
}

// LookupContainer returns the descriptor for name, or ErrContainerNotFound.
func (c *Catalog) LookupContainer(ctx context.Context, name string) (ContainerDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var d ContainerDescriptor
	err := withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT container_name, container_index_path FROM containers WHERE container_name = ?`, name)
		return row.Scan(&d.Name, &d.IndexPath)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return ContainerDescriptor{}, fmt.Errorf("%w: %s", ErrContainerNotFound, name)
		}
		return ContainerDescriptor{}, fmt.Errorf("%w: lookup container: %w", ErrIO, err)
	}
	return d, nil
}

// ListContainers returns every registered container, ordered by name.
func (c *Catalog) ListContainers(ctx context.Context) ([]ContainerDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []ContainerDescriptor
	err := withReadTx(ctx, c.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT container_name, container_index_path FROM containers ORDER BY container_name ASC`)
		if err != nil {
			return fmt.Errorf("%w: list containers: %w", ErrIO, err)
		}
		defer rows.Close()

		for rows.Next() {
			var d ContainerDescriptor
			if err := rows.Scan(&d.Name, &d.IndexPath); err != nil {
				return fmt.Errorf("%w: scan container: %w", ErrIO, err)
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
