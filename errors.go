package dedupe

import (
	"errors"
	"fmt"

	"github.com/jchristn/dedupe/internal/catalog"
)

// Public error kinds, spec.md §7. Internal packages raise their own
// local sentinels (catalog.ErrNotFound, blobstore.ErrChunkNotFound, ...);
// the engine translates them into these at the package boundary so
// callers never need to import internal packages to use errors.Is.
var (
	// ErrInvalidArgument is raised fail-fast, before the catalog is
	// touched: a nil/empty key, a non-positive length, or an invalid
	// CatalogConfig.
	ErrInvalidArgument = errors.New("dedupe: invalid argument")

	// ErrObjectAlreadyExists is raised by Write for a key that already
	// names a live object. No state is changed.
	ErrObjectAlreadyExists = errors.New("dedupe: object already exists")

	// ErrNotFound is raised by Get/GetMetadata/GetStream/Delete for a
	// key with no live object. Get/GetMetadata/GetStream return it as
	// an error; Delete treats a missing key as a no-op and does not
	// return it.
	ErrNotFound = errors.New("dedupe: object not found")

	// ErrCatalogIO wraps a SQL or file error encountered operating on
	// the catalog. The underlying error remains reachable via
	// errors.Is/errors.As.
	ErrCatalogIO = errors.New("dedupe: catalog io error")

	// ErrBlobWrite wraps a failure from the blob backend's WriteChunk
	// during Write. The ingestion transaction is aborted; any blob
	// bytes already written are orphaned, not committed.
	ErrBlobWrite = errors.New("dedupe: blob write error")

	// ErrBlobRead wraps a failure from the blob backend's ReadChunk
	// during Get or a stream Read. The stream is unusable afterward.
	ErrBlobRead = errors.New("dedupe: blob read error")

	// ErrCorruptCatalog is raised when an object's object_map does not
	// form a contiguous, gapless cover of [0, original_length). The
	// object is unreadable.
	ErrCorruptCatalog = errors.New("dedupe: corrupt catalog")
)

// translateCatalogErr maps an internal catalog sentinel onto a public
// error kind, wrapping the original so errors.Is/errors.As still reach
// the cause. Returns nil for a nil input.
func translateCatalogErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, catalog.ErrObjectAlreadyExists):
		return fmt.Errorf("%w: %w", ErrObjectAlreadyExists, err)
	case errors.Is(err, catalog.ErrInvalidConfig):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, catalog.ErrCorrupt):
		return fmt.Errorf("%w: %w", ErrCorruptCatalog, err)
	default:
		return fmt.Errorf("%w: %w", ErrCatalogIO, err)
	}
}

// translateBlobErr maps a blobstore.Store failure onto a public BlobIO
// kind. write distinguishes ErrBlobWrite (Write path) from ErrBlobRead
// (Get/stream path) — the same underlying blobstore.ErrChunkNotFound
// means different things depending on which path hit it.
func translateBlobErr(err error, write bool) error {
	if err == nil {
		return nil
	}
	if write {
		return fmt.Errorf("%w: %w", ErrBlobWrite, err)
	}
	return fmt.Errorf("%w: %w", ErrBlobRead, err)
}
