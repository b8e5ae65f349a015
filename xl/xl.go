// Package xl implements C9, the federation wrapper: a pool catalog
// holding the global chunk table and a registry of container
// descriptors, fronting many per-container catalogs that each hold only
// an objects/object_map table. Chunk identity and reference counts are
// global to the pool regardless of which container's object references
// a chunk.
package xl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/catalog"
	"github.com/jchristn/dedupe/internal/logging"
)

// Pool is a federated dedupe engine: one pool catalog (chunks +
// container descriptors), a shared blob backend, and a cache of opened
// container catalogs. Lock order is always pool before container,
// matching spec.md §5.
type Pool struct {
	pool   *catalog.Catalog
	blobs  blobstore.Store
	logger *slog.Logger

	readGroup singleflight.Group

	mu         sync.Mutex
	containers map[string]*catalog.Catalog // container name -> opened catalog
}

// Options mirrors dedupe.Options for a Pool.
type Options struct {
	Logger *slog.Logger
}

// CreatePool initializes a new pool catalog at path with cfg and returns
// a Pool backed by blobs. The pool catalog's own objects/object_map
// tables go unused; only its chunks and containers tables matter.
func CreatePool(path string, cfg dedupe.Config, blobs blobstore.Store, opts Options) (*Pool, error) {
	logger := logging.Scoped(optLogger(opts), "xl")

	pc, err := catalog.Create(path, toInternalConfig(cfg), logger)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return newPool(pc, blobs, logger), nil
}

// OpenPool opens an existing pool catalog at path.
func OpenPool(path string, blobs blobstore.Store, opts Options) (*Pool, error) {
	logger := logging.Scoped(optLogger(opts), "xl")

	pc, err := catalog.Open(path, logger)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	return newPool(pc, blobs, logger), nil
}

func optLogger(opts Options) *slog.Logger {
	return logging.Default(opts.Logger)
}

func newPool(pc *catalog.Catalog, blobs blobstore.Store, logger *slog.Logger) *Pool {
	return &Pool{
		pool:       pc,
		blobs:      blobs,
		logger:     logger,
		containers: make(map[string]*catalog.Catalog),
	}
}

// Config returns the pool's chunking configuration, shared by every
// container it fronts.
func (p *Pool) Config() dedupe.Config {
	return fromInternalConfig(p.pool.Config())
}

func toInternalConfig(cfg dedupe.Config) catalog.Config {
	return catalog.Config{
		MinChunkSize:       cfg.MinChunkSize,
		MaxChunkSize:       cfg.MaxChunkSize,
		ShiftCount:         cfg.ShiftCount,
		BoundaryCheckBytes: cfg.BoundaryCheckBytes,
	}
}

func fromInternalConfig(c catalog.Config) dedupe.Config {
	return dedupe.Config{
		MinChunkSize:       c.MinChunkSize,
		MaxChunkSize:       c.MaxChunkSize,
		ShiftCount:         c.ShiftCount,
		BoundaryCheckBytes: c.BoundaryCheckBytes,
	}
}

// Close closes the pool catalog and every opened container catalog.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for name, c := range p.containers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close container %q: %w", name, err)
		}
	}
	p.containers = make(map[string]*catalog.Catalog)

	if err := p.pool.Close(); err != nil && firstErr == nil {
		firstErr = translatePoolErr(err)
	}
	return firstErr
}

// containerCatalog returns the opened catalog for (name, indexPath),
// caching it on first use per process. A name already registered in the
// pool's descriptor list is opened at its recorded index path,
// regardless of what indexPath the caller passes this time (matching
// the stored-config-wins rule spec.md §6 applies to the single-catalog
// engine's Open). A name the pool has never seen is registered on the
// spot at indexPath and its catalog created fresh — object-level CLI
// operations name a container only by passing --cname/--cindex; there
// is no separate "create container" step in spec.md's CLI surface.
func (p *Pool) containerCatalog(ctx context.Context, name, indexPath string) (*catalog.Catalog, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.containers[name]; ok {
		return c, nil
	}

	desc, err := p.pool.LookupContainer(ctx, name)
	if err != nil {
		if !errors.Is(err, catalog.ErrContainerNotFound) {
			return nil, translatePoolErr(err)
		}
		if indexPath == "" {
			return nil, translatePoolErr(err)
		}
		return p.registerAndCacheLocked(ctx, name, indexPath)
	}

	c, err := catalog.Open(desc.IndexPath, p.logger)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	p.containers[name] = c
	return c, nil
}

// registerAndCacheLocked creates a container catalog at indexPath,
// records its descriptor in the pool, and caches the handle. Callers
// must hold p.mu.
func (p *Pool) registerAndCacheLocked(ctx context.Context, name, indexPath string) (*catalog.Catalog, error) {
	c, err := catalog.Create(indexPath, p.pool.Config(), p.logger)
	if err != nil {
		return nil, translatePoolErr(err)
	}
	if err := p.pool.RegisterContainer(ctx, name, indexPath); err != nil {
		c.Close()
		return nil, translatePoolErr(err)
	}
	p.containers[name] = c
	return c, nil
}
