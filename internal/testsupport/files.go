package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vogsdemo/internal/manifest"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, SplatBytes(int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SplatBytes returns size bytes of a repeating pattern.
func SplatBytes(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	return buf
}

// WriteManifest encodes m as JSON at path.
func WriteManifest(t testing.TB, path string, m manifest.Manifest) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("encode manifest: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
}

// SampleManifest returns a two-scene manifest whose assets are served as
// relative URLs. The second scene exceeds the asset budget.
func SampleManifest() manifest.Manifest {
	return manifest.Manifest{
		Version:     "1",
		GeneratedAt: "2026-01-01T00:00:00Z",
		Scenes: []manifest.Entry{
			{
				SceneID:                   "scene-001",
				DisplayName:               "Intersection",
				DefaultFusionMode:         manifest.FusionVOGS,
				DefaultRepresentationMode: manifest.RepresentationGaussian,
				Assets:                    []manifest.Asset{{ID: "splat", URL: "scene-001.splat", SizeBytes: 64}},
			},
			{
				SceneID:                   "scene-002",
				DisplayName:               "Highway merge",
				DefaultFusionMode:         manifest.FusionNaive,
				DefaultRepresentationMode: manifest.RepresentationOccupancy,
				Assets:                    []manifest.Asset{{ID: "ply", URL: "scene-002.ply", SizeBytes: 2_400_000}},
			},
		},
	}
}
