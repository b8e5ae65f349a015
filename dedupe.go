// Package dedupe implements a content-defined deduplication storage
// engine: objects identified by string keys are split into
// variable-sized chunks by a content-defined boundary detector,
// deduplicated across all objects sharing a catalog, persisted through
// a pluggable blobstore.Store, and reassembled on demand — including
// random-access streaming reads.
package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jchristn/dedupe/internal/blobstore"
	"github.com/jchristn/dedupe/internal/catalog"
	"github.com/jchristn/dedupe/internal/logging"
)

// Engine is a single-catalog dedupe engine: one catalog, one blob
// backend. Opening two engines against the same catalog file is
// unsupported (spec.md §5).
type Engine struct {
	cat    *catalog.Catalog
	blobs  blobstore.Store
	logger *slog.Logger

	readGroup singleflight.Group

	scheduler gocron.Scheduler
}

// Options configures optional engine behavior beyond the required
// catalog path, config, and blob backend.
type Options struct {
	// Logger is scoped per-component and defaults to a discard logger.
	Logger *slog.Logger

	// MaintenanceInterval, when positive, registers a background
	// gocron job that runs PRAGMA wal_checkpoint and logs a fresh
	// IndexStats() snapshot at this interval. Off by default: purely
	// an operational convenience, never required for correctness.
	MaintenanceInterval time.Duration
}

// Create initializes a new catalog at path with cfg and returns an
// Engine backed by blobs. Fails with ErrInvalidArgument if cfg is
// invalid.
func Create(path string, cfg Config, blobs blobstore.Store, opts Options) (*Engine, error) {
	logger := logging.Scoped(optLogger(opts), "dedupe")

	cat, err := catalog.Create(path, cfg.toInternal(), logger)
	if err != nil {
		return nil, translateCatalogErr(err)
	}
	return newEngine(cat, blobs, logger, opts)
}

// Open opens an existing catalog at path, reading its stored
// configuration, and returns an Engine backed by blobs. Fails with
// ErrCatalogIO (wrapping catalog.ErrNotInitialized) if path has never
// been passed to Create.
func Open(path string, blobs blobstore.Store, opts Options) (*Engine, error) {
	logger := logging.Scoped(optLogger(opts), "dedupe")

	cat, err := catalog.Open(path, logger)
	if err != nil {
		return nil, translateCatalogErr(err)
	}
	return newEngine(cat, blobs, logger, opts)
}

func optLogger(opts Options) *slog.Logger {
	return logging.Default(opts.Logger)
}

func newEngine(cat *catalog.Catalog, blobs blobstore.Store, logger *slog.Logger, opts Options) (*Engine, error) {
	if blobs == nil {
		return nil, fmt.Errorf("%w: blob backend is required", ErrInvalidArgument)
	}

	e := &Engine{
		cat:    cat,
		blobs:  blobs,
		logger: logger,
	}

	if opts.MaintenanceInterval > 0 {
		if err := e.startMaintenance(opts.MaintenanceInterval); err != nil {
			cat.Close()
			return nil, fmt.Errorf("%w: start maintenance scheduler: %w", ErrCatalogIO, err)
		}
	}

	return e, nil
}

// Config returns the engine's active (stored) chunking configuration.
func (e *Engine) Config() Config {
	return fromInternalConfig(e.cat.Config())
}

// Close releases the catalog connection and stops any background
// maintenance scheduler.
func (e *Engine) Close() error {
	if e.scheduler != nil {
		if err := e.scheduler.Shutdown(); err != nil {
			e.logger.Warn("maintenance scheduler shutdown failed", "error", err)
		}
	}
	if err := e.cat.Close(); err != nil {
		return translateCatalogErr(err)
	}
	return nil
}

func (e *Engine) startMaintenance(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			e.runMaintenance(context.Background())
		}),
	)
	if err != nil {
		return err
	}
	e.scheduler = sched
	sched.Start()
	return nil
}

func (e *Engine) runMaintenance(ctx context.Context) {
	if err := e.cat.Checkpoint(ctx); err != nil {
		e.logger.Warn("wal checkpoint failed", "error", err)
	}
	stats, err := e.IndexStats(ctx)
	if err != nil {
		e.logger.Warn("maintenance stats snapshot failed", "error", err)
		return
	}
	e.logger.Info("maintenance snapshot",
		"objects", stats.Objects,
		"chunks", stats.Chunks,
		"logical_bytes", stats.LogicalBytes,
		"physical_bytes", stats.PhysicalBytes,
		"ratio_x", stats.RatioX,
	)
}
