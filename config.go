package dedupe

import "github.com/jchristn/dedupe/internal/catalog"

// Config is the caller-supplied chunking configuration for a new
// catalog (spec.md §3's CatalogConfig). It is immutable after Create:
// Open always uses the stored values, and Create on an already
// initialized catalog keeps the stored values even if a mismatched
// Config is supplied.
type Config struct {
	MinChunkSize       int64
	MaxChunkSize       int64
	ShiftCount         int64
	BoundaryCheckBytes int64
}

// Validate checks the invariants spec.md §3 places on CatalogConfig:
// 0 < min < max; shift_count >= 1; boundary_check_bytes >= 1.
func (c Config) Validate() error {
	if err := c.toInternal().Validate(); err != nil {
		return translateCatalogErr(err)
	}
	return nil
}

func (c Config) toInternal() catalog.Config {
	return catalog.Config{
		MinChunkSize:       c.MinChunkSize,
		MaxChunkSize:       c.MaxChunkSize,
		ShiftCount:         c.ShiftCount,
		BoundaryCheckBytes: c.BoundaryCheckBytes,
	}
}

func fromInternalConfig(c catalog.Config) Config {
	return Config{
		MinChunkSize:       c.MinChunkSize,
		MaxChunkSize:       c.MaxChunkSize,
		ShiftCount:         c.ShiftCount,
		BoundaryCheckBytes: c.BoundaryCheckBytes,
	}
}
