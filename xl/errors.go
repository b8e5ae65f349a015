package xl

import (
	"errors"
	"fmt"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/catalog"
)

// ErrContainerNotFound is raised when a container name has no
// registered descriptor in the pool.
var ErrContainerNotFound = errors.New("xl: container not found")

// ErrContainerAlreadyExists is raised by RegisterContainer for a name
// already present in the pool's descriptor list.
var ErrContainerAlreadyExists = errors.New("xl: container already exists")

// translatePoolErr maps a pool- or container-catalog sentinel onto the
// same public error kinds dedupe exposes, so callers use one set of
// errors.Is checks regardless of which package they're calling into.
func translatePoolErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrContainerNotFound):
		return fmt.Errorf("%w: %w", ErrContainerNotFound, err)
	case errors.Is(err, catalog.ErrContainerAlreadyExists):
		return fmt.Errorf("%w: %w", ErrContainerAlreadyExists, err)
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("%w: %w", dedupe.ErrNotFound, err)
	case errors.Is(err, catalog.ErrObjectAlreadyExists):
		return fmt.Errorf("%w: %w", dedupe.ErrObjectAlreadyExists, err)
	case errors.Is(err, catalog.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", dedupe.ErrInvalidArgument, err)
	case errors.Is(err, catalog.ErrCorrupt):
		return fmt.Errorf("%w: %w", dedupe.ErrCorruptCatalog, err)
	default:
		return fmt.Errorf("%w: %w", dedupe.ErrCatalogIO, err)
	}
}

func translateBlobErr(err error, write bool) error {
	if err == nil {
		return nil
	}
	if write {
		return fmt.Errorf("%w: %w", dedupe.ErrBlobWrite, err)
	}
	return fmt.Errorf("%w: %w", dedupe.ErrBlobRead, err)
}
