package diagnostics_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"vogsdemo/internal/diagnostics"
	"vogsdemo/internal/manifest"
)

type recordingSink struct {
	mu     sync.Mutex
	events []diagnostics.Event
	err    error
	panic  bool
}

func (r *recordingSink) Record(_ context.Context, event diagnostics.Event) error {
	if r.panic {
		panic("sink exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
}

func TestServiceEmitsEveryEventType(t *testing.T) {
	sink := &recordingSink{}
	svc := diagnostics.NewService(nil, diagnostics.WithSink(sink), diagnostics.WithClock(fixedClock))

	svc.LogAssetLoadStart("scene-1")
	svc.LogAssetLoadSuccess("scene-1", 1500*time.Millisecond)
	svc.LogAssetLoadFailed("scene-1", -time.Second, "ASSET_FETCH_ERROR")
	svc.LogFusionModeChanged("scene-1", manifest.FusionVOGS)
	svc.LogRepresentationChanged("scene-1", manifest.RepresentationGaussian)

	if len(sink.events) != len(diagnostics.EventTypes) {
		t.Fatalf("expected %d events, got %d", len(diagnostics.EventTypes), len(sink.events))
	}
	for i, want := range diagnostics.EventTypes {
		if sink.events[i].Event != want {
			t.Fatalf("event %d = %s, want %s", i, sink.events[i].Event, want)
		}
		if sink.events[i].ID == "" {
			t.Fatalf("event %d missing id", i)
		}
	}
	start := sink.events[0]
	if start.DurationMs != nil || start.Mode != "" || start.ErrorCode != "" {
		t.Fatalf("start event should carry only base fields: %+v", start)
	}
	if got := start.TimestampString(); got != "2026-03-01T11:00:00.000Z" {
		t.Fatalf("timestamp = %q", got)
	}
	if success := sink.events[1]; success.DurationMs == nil || *success.DurationMs != 1500 {
		t.Fatalf("unexpected success duration: %+v", success)
	}
	failed := sink.events[2]
	if failed.DurationMs == nil || *failed.DurationMs != 0 || failed.ErrorCode != "ASSET_FETCH_ERROR" {
		t.Fatalf("unexpected failed event: %+v", failed)
	}
	if sink.events[3].Mode != "vogs" || sink.events[4].Mode != "gaussian" {
		t.Fatalf("unexpected mode events: %+v %+v", sink.events[3], sink.events[4])
	}
}

func TestServiceSwallowsSinkFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	failing := diagnostics.NewService(logger, diagnostics.WithSink(&recordingSink{err: errors.New("disk full")}))
	failing.LogAssetLoadStart("scene-1")

	panicking := diagnostics.NewService(logger, diagnostics.WithSink(&recordingSink{panic: true}))
	panicking.LogAssetLoadStart("scene-1")

	out := buf.String()
	if !strings.Contains(out, "diagnostics sink write failed") {
		t.Fatalf("expected sink failure to be logged, got %q", out)
	}
	if !strings.Contains(out, "diagnostics emit panicked") {
		t.Fatalf("expected panic to be logged, got %q", out)
	}
}

func TestDisabledServiceEmitsNothing(t *testing.T) {
	sink := &recordingSink{}
	svc := diagnostics.NewService(nil, diagnostics.WithSink(sink), diagnostics.WithEnabled(false))
	svc.LogAssetLoadStart("scene-1")
	if len(sink.events) != 0 {
		t.Fatalf("expected no events, got %d", len(sink.events))
	}

	var nilSvc *diagnostics.Service
	nilSvc.LogAssetLoadStart("scene-1")
}
