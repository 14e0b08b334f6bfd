package preflight

import (
	"context"
	"strings"

	"vogsdemo/internal/config"
)

// CheckAssetHost evaluates the asset host from config and connectivity.
func CheckAssetHost(ctx context.Context, cfg *config.Config) Result {
	const name = "Asset host"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Assets.BaseURL) == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured (absolute asset URLs only)"}
	}
	return CheckHTTPReachable(ctx, name, cfg.Assets.BaseURL)
}

// CheckSceneDataHost evaluates the recorded scene host from config and connectivity.
func CheckSceneDataHost(ctx context.Context, cfg *config.Config) Result {
	const name = "Scene data host"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.SceneData.BaseURL) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.SceneData.SceneID) == "" {
		return Result{Name: name, Detail: "Missing scene id"}
	}
	return CheckHTTPReachable(ctx, name, cfg.SceneData.BaseURL)
}
