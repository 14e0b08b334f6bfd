package testsupport

import (
	"path/filepath"
	"testing"

	"vogsdemo/internal/config"
	"vogsdemo/internal/manifest"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Remote hosts are cleared so tests never reach the network by default.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ManifestPath = filepath.Join(base, "scene-manifest.json")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Assets.BaseURL = ""
	cfgVal.SceneData.BaseURL = ""
	cfgVal.Logging.Format = "json"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAssetBaseURL points relative manifest asset URLs at baseURL.
func WithAssetBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Assets.BaseURL = baseURL
	}
}

// WithSceneData points the recorded scene loader at baseURL.
func WithSceneData(baseURL, sceneID string, cameras int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SceneData.BaseURL = baseURL
		b.cfg.SceneData.SceneID = sceneID
		b.cfg.SceneData.CameraCount = cameras
	}
}

// WithManifest writes m to the config's manifest path.
func WithManifest(m manifest.Manifest) ConfigOption {
	return func(b *configBuilder) {
		WriteManifest(b.t, b.cfg.Paths.ManifestPath, m)
	}
}

// WithoutPersistence keeps diagnostics in the log only.
func WithoutPersistence() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Diagnostics.Persist = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
