// Package daemon coordinates the long-running vogsdemo process.
//
// It wires configuration, the scene manifest, the shared fusion store, the
// asset loader, the headless renderer, and load telemetry into a single
// lifecycle with flock-based locking to prevent multiple instances. The HTTP
// API exposes scene loading, retry, mode switching, and the recorded
// telemetry events.
//
// Keep orchestration logic here: load sequencing lives in internal/shell and
// asset fetching in internal/sceneasset, while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
