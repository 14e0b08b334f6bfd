// Package renderer provides the headless scene renderer the load sequencer
// hands parsed payloads to. It validates each payload for its format, keeps a
// summary of the loaded scene, and tracks mode mutations.
package renderer
