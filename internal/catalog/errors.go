package catalog

import "errors"

// Sentinel errors raised by the catalog. The root dedupe package maps
// these onto the public error kinds described in spec.md §7.
var (
	// ErrNotFound is returned by LookupObject/DeleteObject for a key with
	// no live object.
	ErrNotFound = errors.New("catalog: object not found")

	// ErrObjectAlreadyExists is returned by InsertObject when key already
	// names a live object.
	ErrObjectAlreadyExists = errors.New("catalog: object already exists")

	// ErrInvalidConfig is returned when a CatalogConfig violates spec.md §3's
	// invariants.
	ErrInvalidConfig = errors.New("catalog: invalid config")

	// ErrIO wraps any *sql.DB/*sql.Tx failure. The underlying driver error
	// is wrapped alongside it and reachable via errors.Is/errors.As.
	ErrIO = errors.New("catalog: io error")

	// ErrCorrupt is returned when an object's object_map rows do not form
	// a contiguous, gapless cover of [0, original_length).
	ErrCorrupt = errors.New("catalog: object map does not cover object")

	// ErrNotInitialized is returned by Open when the config table has no
	// stored row — the path is not a dedupe catalog.
	ErrNotInitialized = errors.New("catalog: not initialized")

	// ErrContainerNotFound is returned by pool-profile container lookups.
	ErrContainerNotFound = errors.New("catalog: container not registered")

	// ErrContainerAlreadyExists is returned by RegisterContainer for a
	// name already present in the pool descriptor list.
	ErrContainerAlreadyExists = errors.New("catalog: container already registered")
)
