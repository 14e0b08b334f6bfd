// Package scenedata loads the recorded driving scene that backs the demo:
// frame timestamps, track identities, per-frame camera visibility, camera
// calibration, and ego poses. It also computes which tracks each fusion mode
// detects at a given frame.
//
// Loads are shared between concurrent callers and the result is cached for
// the lifetime of the Loader.
package scenedata
