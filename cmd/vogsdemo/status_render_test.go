package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"vogsdemo/internal/fusion"
	"vogsdemo/internal/preflight"
	"vogsdemo/internal/sceneasset"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("scene-001", statusError, "failed", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "scene-001:", "[ERROR] failed")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("scene-001", statusOK, "ready", true)
	if !strings.HasPrefix(got, statusStyles[statusOK].color) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "State directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "Asset budget", Passed: false, Detail: "over budget: s2 (3000000 bytes)"},
	}
	lines := preflightLines(results, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "[OK] /tmp") {
		t.Fatalf("unexpected first result line %q", lines[2])
	}
	if !strings.Contains(lines[3], "[ERROR] over budget") {
		t.Fatalf("unexpected second result line %q", lines[3])
	}
}

func TestStatusForLoad(t *testing.T) {
	tests := map[fusion.LoadStatus]statusKind{
		fusion.LoadIdle:    statusInfo,
		fusion.LoadLoading: statusPending,
		fusion.LoadReady:   statusOK,
		fusion.LoadFailed:  statusError,
	}
	for status, want := range tests {
		if got := statusForLoad(status); got != want {
			t.Fatalf("statusForLoad(%q) = %d, want %d", status, got, want)
		}
	}
}

func TestDescribeLoadEvent(t *testing.T) {
	loading := describeLoadEvent("s1", sceneasset.LoadEvent{Kind: sceneasset.EventLoading}, false)
	if !strings.Contains(loading, "[..] loading") {
		t.Fatalf("unexpected loading line %q", loading)
	}

	failed := sceneasset.LoadEvent{
		Kind: sceneasset.EventFailed,
		Err:  &sceneasset.FetchError{Message: "Asset request returned 404.", Status: 404},
	}
	got := describeLoadEvent("s1", failed, false)
	if !strings.Contains(got, "[ERROR] failed ASSET_FETCH_ERROR: Asset request returned 404.") {
		t.Fatalf("unexpected failed line %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		999:       "999 B",
		1000:      "1.00 kB",
		2_400_000: "2.40 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Fatalf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
