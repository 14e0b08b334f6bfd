package preflight

import (
	"context"

	"vogsdemo/internal/config"
	"vogsdemo/internal/manifest"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// State and log directories (always checked)
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Manifest contract and asset budget
	results = append(results, CheckManifest("Scene manifest", cfg.Paths.ManifestPath))
	results = append(results, CheckManifestBudget("Asset budget", cfg.Paths.ManifestPath, manifest.DefaultBudgetBytes))

	// Remote hosts (when configured)
	if cfg.Assets.BaseURL != "" {
		results = append(results, CheckAssetHost(ctx, cfg))
	}
	if cfg.SceneData.BaseURL != "" {
		results = append(results, CheckSceneDataHost(ctx, cfg))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
