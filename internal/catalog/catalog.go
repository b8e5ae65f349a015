// Package catalog implements C3 (spec.md §4.3): the persistent index of
// objects, chunks, and object-maps backed by an embedded SQLite database,
// plus — for the federated shape (§4.9) — a pool catalog's container
// descriptor list. One schema serves both profiles: a pool catalog only
// ever touches the chunks/containers tables, a container catalog only
// ever touches objects/object_map; nothing in the schema forces that
// split, it's a convention the two call sites (engine and xl packages)
// honor.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jchristn/dedupe/internal/logging"
)

// Config is the immutable, persisted chunking configuration for a catalog
// (spec.md §3's CatalogConfig).
type Config struct {
	MinChunkSize       int64
	MaxChunkSize       int64
	ShiftCount         int64
	BoundaryCheckBytes int64
}

// Validate checks the invariants spec.md §3 places on CatalogConfig.
func (c Config) Validate() error {
	switch {
	case c.MinChunkSize <= 0:
		return fmt.Errorf("%w: min_chunk_size must be positive", ErrInvalidConfig)
	case c.MaxChunkSize <= c.MinChunkSize:
		return fmt.Errorf("%w: max_chunk_size must exceed min_chunk_size", ErrInvalidConfig)
	case c.ShiftCount < 1:
		return fmt.Errorf("%w: shift_count must be at least 1", ErrInvalidConfig)
	case c.BoundaryCheckBytes < 1:
		return fmt.Errorf("%w: boundary_check_bytes must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Object mirrors the objects table (spec.md §3).
type Object struct {
	ID               int64
	Key              string
	OriginalLength   int64
	CompressedLength int64
	ChunkCount       int64
	CreatedUTC       time.Time
}

// ObjectMapEntry mirrors one object_map row.
type ObjectMapEntry struct {
	ChunkKey string
	Length   int64
	Position int64
}

// Placement is the input shape InsertObject consumes: a chunk key/length
// to be recorded at a byte offset within the object being inserted.
type Placement struct {
	ChunkKey string
	Length   int64
	Position int64
}

// Stats mirrors spec.md §3's IndexStatistics.
type Stats struct {
	Objects       int64
	Chunks        int64
	LogicalBytes  int64
	PhysicalBytes int64
	RatioX        float64
	RatioPct      float64
}

// Catalog is one catalog instance (single-profile, pool-profile, or
// container-profile — see package doc). Every mutating operation is
// serialized through mu; reads may run concurrently with each other but
// are serialized against writers, matching spec.md §5.
type Catalog struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	id     uuid.UUID
	config Config
	logger *slog.Logger
}

const configKeyCatalogID = "catalog_id"
const (
	configKeyMinChunkSize       = "min_chunk_size"
	configKeyMaxChunkSize       = "max_chunk_size"
	configKeyShiftCount         = "shift_count"
	configKeyBoundaryCheckBytes = "boundary_check_bytes"
)

func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: create catalog directory: %w", ErrIO, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", ErrIO, err)
	}
	// SQLite has one writer regardless of connection pool size; pin the
	// pool to one connection so Go's *sql.DB doesn't hand out a second
	// connection that would otherwise just block inside the driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set journal_mode: %w", ErrIO, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set foreign_keys: %w", ErrIO, err)
	}
	return db, nil
}

// Create opens (creating if absent) the catalog at path, initializes the
// schema, and persists cfg. If a config row already exists, per spec.md
// §4.3 the stored configuration wins and cfg is ignored (altering
// min/max/shift/boundary on an existing catalog would silently break
// chunk reuse, so Create never does it implicitly).
func Create(path string, cfg Config, logger *slog.Logger) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.Scoped(logger, "catalog")

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %w", ErrIO, err)
	}

	id, stored, err := loadOrPersistConfig(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	if stored != cfg {
		logger.Info("catalog already initialized; keeping stored config", "path", path)
	}

	return &Catalog{db: db, path: path, id: id, config: stored, logger: logger}, nil
}

// Open opens an existing catalog and reads its stored config. It fails
// with ErrNotInitialized if path has never been passed to Create.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	logger = logging.Scoped(logger, "catalog")

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %w", ErrIO, err)
	}

	id, cfg, err := loadConfig(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if cfg == nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, path)
	}

	logger.Info("catalog opened", "path", path, "id", id)
	return &Catalog{db: db, path: path, id: id, config: *cfg, logger: logger}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrIO, err)
	}
	return nil
}

// Config returns the catalog's immutable, stored chunking configuration.
func (c *Catalog) Config() Config { return c.config }

// ID returns the catalog's diagnostic identity, stamped at creation.
func (c *Catalog) ID() uuid.UUID { return c.id }

// Path returns the catalog's on-disk path.
func (c *Catalog) Path() string { return c.path }

func loadOrPersistConfig(db *sql.DB, cfg Config) (uuid.UUID, Config, error) {
	id, stored, err := loadConfig(db)
	if err != nil {
		return uuid.UUID{}, Config{}, err
	}
	if stored != nil {
		return id, *stored, nil
	}

	newID := uuid.New()
	tx, err := db.Begin()
	if err != nil {
		return uuid.UUID{}, Config{}, fmt.Errorf("%w: begin: %w", ErrIO, err)
	}
	rows := map[string]string{
		configKeyCatalogID:          newID.String(),
		configKeyMinChunkSize:       fmt.Sprint(cfg.MinChunkSize),
		configKeyMaxChunkSize:       fmt.Sprint(cfg.MaxChunkSize),
		configKeyShiftCount:         fmt.Sprint(cfg.ShiftCount),
		configKeyBoundaryCheckBytes: fmt.Sprint(cfg.BoundaryCheckBytes),
	}
	for k, v := range rows {
		if _, err := tx.Exec(`INSERT INTO config (key, value) VALUES (?, ?)`, k, v); err != nil {
			tx.Rollback()
			return uuid.UUID{}, Config{}, fmt.Errorf("%w: persist config: %w", ErrIO, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return uuid.UUID{}, Config{}, fmt.Errorf("%w: commit config: %w", ErrIO, err)
	}
	return newID, cfg, nil
}

func loadConfig(db *sql.DB) (uuid.UUID, *Config, error) {
	rows, err := db.Query(`SELECT key, value FROM config`)
	if err != nil {
		return uuid.UUID{}, nil, fmt.Errorf("%w: read config: %w", ErrIO, err)
	}
	defer rows.Close()

	values := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return uuid.UUID{}, nil, fmt.Errorf("%w: scan config: %w", ErrIO, err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return uuid.UUID{}, nil, fmt.Errorf("%w: iterate config: %w", ErrIO, err)
	}
	if len(values) == 0 {
		return uuid.UUID{}, nil, nil
	}

	id, err := uuid.Parse(values[configKeyCatalogID])
	if err != nil {
		return uuid.UUID{}, nil, fmt.Errorf("%w: parse catalog id: %w", ErrCorrupt, err)
	}
	var cfg Config
	if cfg.MinChunkSize, err = parseConfigInt(values, configKeyMinChunkSize); err != nil {
		return uuid.UUID{}, nil, err
	}
	if cfg.MaxChunkSize, err = parseConfigInt(values, configKeyMaxChunkSize); err != nil {
		return uuid.UUID{}, nil, err
	}
	if cfg.ShiftCount, err = parseConfigInt(values, configKeyShiftCount); err != nil {
		return uuid.UUID{}, nil, err
	}
	if cfg.BoundaryCheckBytes, err = parseConfigInt(values, configKeyBoundaryCheckBytes); err != nil {
		return uuid.UUID{}, nil, err
	}
	return id, &cfg, nil
}

func parseConfigInt(values map[string]string, key string) (int64, error) {
	var n int64
	if _, err := fmt.Sscan(values[key], &n); err != nil {
		return 0, fmt.Errorf("%w: parse %s: %w", ErrCorrupt, key, err)
	}
	return n, nil
}

// withReadTx runs fn inside a read-only transaction obtained from db (not through the
// write lock — callers that need write serialization use BeginWrite).
func withReadTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("%w: begin read transaction: %w", ErrIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only; rollback after a completed read is a no-op
	return fn(tx)
}
