// Package fusion holds the shared demo state: the active fusion and
// representation modes and the scene load state written by the load
// sequencer. It also carries the headline metric constants and display
// labels used by the CLI and HTTP API.
package fusion
