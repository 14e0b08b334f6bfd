// Package manifest models the scene manifest: the declarative list of demo
// scenes, their default fusion/representation modes, and the assets each one
// loads.
//
// Besides decoding, the package carries the manifest contract checks
// (ValidateDocument for raw JSON, Validate for decoded manifests) and the
// per-scene asset budget report used by the CLI and preflight checks.
package manifest
