// Package logging provides small helpers for structured logging across
// the dedupe engine.
//
// Design principles:
//   - Logging is dependency-injected, never global
//   - Each component owns its own scoped logger, attached once at construction
//   - slog.With() attaches default attributes (component, catalog path, ...)
//   - If no logger is provided, a discard logger is used
//
// Global configuration (output format, level, destination) belongs only in
// cmd/dedupe/main.go. Packages under internal/ and the root engine package
// must never call slog.SetDefault.
//
// Logging is intentionally sparse: catalog open, maintenance snapshots,
// and failures the engine absorbs (an orphaned chunk delete, a WAL
// checkpoint, a blob store watch error) are logged; catalog close,
// object writes and deletes, and chunk-level work inside a single
// ingestion are not.
package logging

import (
	"context"
	"log/slog"
)

// discardHandler is a handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// Discard returns a logger that discards all output.
// Use this as a default when no logger is provided.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Default returns logger if non-nil, otherwise a discard logger.
//
//	func NewEngine(logger *slog.Logger) *Engine {
//	    logger = logging.Default(logger)
//	    return &Engine{logger: logger.With("component", "engine")}
//	}
func Default(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

// Scoped returns logger (or a discard logger) with "component" set to name.
func Scoped(logger *slog.Logger, name string) *slog.Logger {
	return Default(logger).With("component", name)
}
