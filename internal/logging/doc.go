// Package logging assembles structured slog loggers and formatting helpers used
// across the vogsdemo services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so loader and sequencer code can
// tag log lines with scene IDs, load cycles, and correlation IDs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
