// Package main hosts the vogsdemo CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the demo daemon, loads individual scenes
// through the same sequencer the daemon uses, checks the scene manifest
// against its contract and asset budget, and inspects recorded telemetry.
// It centralizes configuration resolution and structured logging setup so
// subcommands can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
