// Package diagnostics records best-effort telemetry for scene loads and mode
// changes.
//
// Events are written to the structured logger and, when configured, appended
// to a SQLite event store that the CLI and HTTP API read back. Sink failures
// are logged at debug level and never reach the caller.
package diagnostics
