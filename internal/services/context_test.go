package services

import (
	"context"
	"testing"
)

func TestContextHelpersRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = WithSceneID(ctx, "scene-002")
	ctx = WithLoadCycle(ctx, 7)
	ctx = WithRequestID(ctx, "req-1")

	if got, ok := SceneIDFromContext(ctx); !ok || got != "scene-002" {
		t.Fatalf("scene id = %q, %v", got, ok)
	}
	if got, ok := LoadCycleFromContext(ctx); !ok || got != 7 {
		t.Fatalf("load cycle = %d, %v", got, ok)
	}
	if got, ok := RequestIDFromContext(ctx); !ok || got != "req-1" {
		t.Fatalf("request id = %q, %v", got, ok)
	}
}

func TestContextHelpersIgnoreEmptyValues(t *testing.T) {
	ctx := context.Background()
	if WithSceneID(ctx, "") != ctx {
		t.Fatal("expected empty scene id to leave context untouched")
	}
	if WithRequestID(ctx, "") != ctx {
		t.Fatal("expected empty request id to leave context untouched")
	}
	if _, ok := LoadCycleFromContext(ctx); ok {
		t.Fatal("expected no load cycle on bare context")
	}
}
