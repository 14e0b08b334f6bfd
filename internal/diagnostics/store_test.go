package diagnostics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vogsdemo/internal/diagnostics"
)

func openStore(t *testing.T) *diagnostics.Store {
	t.Helper()
	store, err := diagnostics.Open(filepath.Join(t.TempDir(), "state", "diagnostics.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordsAndListsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	ms := int64(420)

	events := []diagnostics.Event{
		{ID: "a", Event: diagnostics.EventAssetLoadStart, Timestamp: base, SceneID: "s1"},
		{ID: "b", Event: diagnostics.EventAssetLoadSuccess, Timestamp: base.Add(time.Second), SceneID: "s1", DurationMs: &ms},
		{ID: "c", Event: diagnostics.EventFusionModeChanged, Timestamp: base.Add(2 * time.Second), SceneID: "s1", Mode: "vogs"},
	}
	for _, event := range events {
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].ID != "c" || recent[0].Mode != "vogs" {
		t.Fatalf("unexpected newest event: %+v", recent[0])
	}
	if recent[1].ID != "b" || recent[1].DurationMs == nil || *recent[1].DurationMs != 420 {
		t.Fatalf("unexpected second event: %+v", recent[1])
	}
	if !recent[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Fatalf("timestamp = %s", recent[1].Timestamp)
	}
}

func TestStoreReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	store, err := diagnostics.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := store.Record(context.Background(), diagnostics.Event{ID: "x", Event: diagnostics.EventAssetLoadStart, SceneID: "s"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	_ = store.Close()

	reopened, err := diagnostics.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "x" {
		t.Fatalf("unexpected events after reopen: %+v", recent)
	}
}

func TestServicePersistsThroughStore(t *testing.T) {
	store := openStore(t)
	svc := diagnostics.NewService(nil, diagnostics.WithSink(store))
	svc.LogAssetLoadFailed("scene-9", 3*time.Second, "ASSET_BUDGET_ERROR")

	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 event, got %d", len(recent))
	}
	got := recent[0]
	if got.Event != diagnostics.EventAssetLoadFailed || got.ErrorCode != "ASSET_BUDGET_ERROR" || got.SceneID != "scene-9" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := diagnostics.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
