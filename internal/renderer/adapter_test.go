package renderer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vogsdemo/internal/manifest"
	"vogsdemo/internal/renderer"
	"vogsdemo/internal/sceneasset"
)

func payload(format sceneasset.Format, data any) *sceneasset.ParsedScenePayload {
	return &sceneasset.ParsedScenePayload{
		SceneID:   "scene-1",
		AssetURL:  "scene." + string(format),
		Format:    format,
		SizeBytes: 128,
		Data:      data,
	}
}

func TestLoadSummarizesEachFormat(t *testing.T) {
	tests := []struct {
		name  string
		in    *sceneasset.ParsedScenePayload
		check func(t *testing.T, s renderer.Summary)
	}{
		{"ply", payload(sceneasset.FormatPLY, "ply\nformat ascii 1.0\nelement vertex 12\nproperty float x\nend_header\n"), func(t *testing.T, s renderer.Summary) {
			if s.Vertices != 12 {
				t.Fatalf("vertices = %d", s.Vertices)
			}
		}},
		{"splat", payload(sceneasset.FormatSplat, make([]byte, 96)), func(t *testing.T, s renderer.Summary) {
			if s.Splats != 3 {
				t.Fatalf("splats = %d", s.Splats)
			}
		}},
		{"gltf", payload(sceneasset.FormatGLTF, map[string]any{"asset": map[string]any{"version": "2.0"}}), func(t *testing.T, s renderer.Summary) {
			if s.GLTFVersion != "2.0" {
				t.Fatalf("gltf version = %q", s.GLTFVersion)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := renderer.NewAdapter(nil)
			if err := adapter.Load(context.Background(), tt.in); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			summary, ok := adapter.Summary()
			if !ok || summary.SceneID != "scene-1" || summary.Format != tt.in.Format {
				t.Fatalf("unexpected summary: %+v", summary)
			}
			tt.check(t, summary)
		})
	}
}

func TestLoadRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		in   *sceneasset.ParsedScenePayload
		want string
	}{
		{"nil", nil, "empty payload"},
		{"ply magic", payload(sceneasset.FormatPLY, "obj\nend_header\n"), "magic"},
		{"ply header", payload(sceneasset.FormatPLY, "ply\nelement vertex 3\n"), "end_header"},
		{"ply type", payload(sceneasset.FormatPLY, []byte("ply")), "must be text"},
		{"splat length", payload(sceneasset.FormatSplat, make([]byte, 33)), "multiple of 32"},
		{"splat empty", payload(sceneasset.FormatSplat, []byte{}), "multiple of 32"},
		{"gltf asset", payload(sceneasset.FormatGLTF, map[string]any{"scenes": []any{}}), "missing the asset object"},
		{"gltf version", payload(sceneasset.FormatGLTF, map[string]any{"asset": map[string]any{}}), "missing a version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := renderer.NewAdapter(nil)
			err := adapter.Load(context.Background(), tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if _, ok := adapter.Summary(); ok {
				t.Fatal("expected no summary after failed load")
			}
		})
	}
}

func TestModeMutationsCountOnlyChanges(t *testing.T) {
	adapter := renderer.NewAdapter(nil)
	adapter.ApplyFusionMode(manifest.FusionVOGS)
	adapter.ApplyFusionMode(manifest.FusionVOGS)
	adapter.ApplyFusionMode(manifest.FusionNaive)
	adapter.ApplyRepresentationMode(manifest.RepresentationGaussian)
	adapter.ApplyRepresentationMode(manifest.RepresentationGaussian)

	stats := adapter.Stats()
	if stats.FusionMutations != 2 || stats.RepresentationMutations != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	adapter := renderer.NewAdapter(nil)
	if err := adapter.Load(context.Background(), payload(sceneasset.FormatSplat, make([]byte, 32))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	adapter.Dispose()
	adapter.Dispose()
	if adapter.Disposals() != 1 {
		t.Fatalf("expected a single disposal, got %d", adapter.Disposals())
	}
	if _, ok := adapter.Summary(); ok {
		t.Fatal("expected summary to be cleared")
	}
	err := adapter.Load(context.Background(), payload(sceneasset.FormatSplat, make([]byte, 32)))
	if !errors.Is(err, renderer.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	adapter := renderer.NewAdapter(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := adapter.Load(ctx, payload(sceneasset.FormatSplat, make([]byte, 32))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
