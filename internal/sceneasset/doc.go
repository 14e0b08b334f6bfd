// Package sceneasset turns scene manifest entries into load event streams.
//
// A load resolves the entry's primary asset, enforces the asset budget,
// derives the asset format from the URL extension, fetches the asset over
// HTTP with a per-attempt timeout, and decodes the body for the renderer.
// Transient failures are retried exactly once. Every outcome is reported as
// a LoadEvent: one loading event followed by one terminal ready or failed
// event, after which the channel is closed.
package sceneasset
