// Package shell sequences scene load attempts.
//
// The Sequencer owns the identity of the current attempt. Each Start or Retry
// bumps a cycle id and stops observing the previous event stream; results
// that arrive for an older cycle, or after the attempt already reached a
// terminal state, are discarded. Terminal outcomes are written to the shared
// fusion store and reported to telemetry. The sequencer is the only writer of
// the scene load state.
package shell
