package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vogsdemo/internal/diagnostics"
	"vogsdemo/internal/fusion"
	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/sceneasset"
	"vogsdemo/internal/testsupport"
)

func newTestDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*Daemon, *httptest.Server) {
	t.Helper()

	assets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "scene-001.splat":
			_, _ = w.Write(testsupport.SplatBytes(64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(assets.Close)

	opts = append([]testsupport.ConfigOption{
		testsupport.WithAssetBaseURL(assets.URL),
		testsupport.WithManifest(testsupport.SampleManifest()),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	d, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	api := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(api.Close)
	return d, api
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

func TestAPIServerListsScenes(t *testing.T) {
	_, api := newTestDaemon(t)

	resp := get(t, api.URL+"/api/scenes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", resp.StatusCode)
	}
	list := decodeBody[SceneListResponse](t, resp)
	if len(list.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(list.Scenes))
	}
	if list.Scenes[0].SceneID != "scene-001" || list.Scenes[0].OverBudget {
		t.Fatalf("unexpected first scene: %+v", list.Scenes[0])
	}
	if !list.Scenes[1].OverBudget || list.Scenes[1].TotalBytes != 2_400_000 {
		t.Fatalf("expected second scene over budget, got %+v", list.Scenes[1])
	}
}

func TestAPIServerLoadsSceneAndRecordsEvents(t *testing.T) {
	d, api := newTestDaemon(t)

	resp := post(t, api.URL+"/api/scenes/scene-001/load", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	accepted := decodeBody[LoadResponse](t, resp)
	if accepted.Cycle != 1 || accepted.SceneID != "scene-001" {
		t.Fatalf("unexpected load response: %+v", accepted)
	}
	d.sequencer.Wait()

	status := decodeBody[Status](t, get(t, api.URL+"/api/state"))
	if status.State.LoadState.Status != fusion.LoadReady {
		t.Fatalf("expected ready, got %+v", status.State.LoadState)
	}
	if status.State.FusionMode != manifest.FusionVOGS || status.State.RepresentationMode != manifest.RepresentationGaussian {
		t.Fatalf("expected scene default modes, got %+v", status.State)
	}
	if status.Loaded == nil || status.Loaded.Splats != 2 {
		t.Fatalf("expected loaded summary with 2 splats, got %+v", status.Loaded)
	}

	events := decodeBody[EventListResponse](t, get(t, api.URL+"/api/events?limit=10"))
	if len(events.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events.Events))
	}
	if events.Events[0].Event != diagnostics.EventAssetLoadSuccess || events.Events[1].Event != diagnostics.EventAssetLoadStart {
		t.Fatalf("unexpected event order: %s, %s", events.Events[0].Event, events.Events[1].Event)
	}
}

func TestAPIServerReportsBudgetFailure(t *testing.T) {
	d, api := newTestDaemon(t)

	resp := post(t, api.URL+"/api/scenes/scene-002/load", "")
	resp.Body.Close()
	d.sequencer.Wait()

	state := d.State()
	if state.LoadState.Status != fusion.LoadFailed {
		t.Fatalf("expected failed, got %s", state.LoadState.Status)
	}
	if state.LoadState.Error == nil || state.LoadState.Error.Code != sceneasset.CodeBudget {
		t.Fatalf("expected budget error, got %+v", state.LoadState.Error)
	}
}

func TestAPIServerUnknownSceneIsNotFound(t *testing.T) {
	_, api := newTestDaemon(t)

	resp := post(t, api.URL+"/api/scenes/missing/load", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if !strings.Contains(body["error"], "missing") {
		t.Fatalf("unexpected error body: %v", body)
	}

	resp = get(t, api.URL+"/api/scenes/scene-001/load")
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestAPIServerRetryWithoutPriorAttemptFails(t *testing.T) {
	d, api := newTestDaemon(t)

	resp := post(t, api.URL+"/api/retry", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	d.sequencer.Wait()

	state := d.State()
	if state.LoadState.Error == nil || state.LoadState.Error.Message != "No scene has been loaded yet." {
		t.Fatalf("unexpected load state: %+v", state.LoadState)
	}
}

func TestAPIServerModes(t *testing.T) {
	d, api := newTestDaemon(t)

	state := decodeBody[fusion.State](t, post(t, api.URL+"/api/modes", `{"fusion":"vogs","representation":"gaussian"}`))
	if state.FusionMode != manifest.FusionVOGS || state.RepresentationMode != manifest.RepresentationGaussian {
		t.Fatalf("unexpected state: %+v", state)
	}

	state = decodeBody[fusion.State](t, post(t, api.URL+"/api/modes", `{"fusion":"ground_truth","representation":"occupancy"}`))
	if state.FusionMode != manifest.FusionGroundTruth {
		t.Fatalf("expected ground truth, got %s", state.FusionMode)
	}
	if state.RepresentationMode != manifest.RepresentationGaussian {
		t.Fatalf("expected representation unchanged under ground truth, got %s", state.RepresentationMode)
	}

	// The initial modes are applied once at construction.
	stats := d.renderer.Stats()
	if stats.FusionMutations != 3 || stats.RepresentationMutations != 2 {
		t.Fatalf("unexpected renderer stats: %+v", stats)
	}

	resp := post(t, api.URL+"/api/modes", `{"fusion":"telepathy"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
	resp = post(t, api.URL+"/api/modes", `{"colour":"red"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}

	events, err := d.Events(t.Context(), 10)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 mode events, got %d", len(events))
	}
}

func TestAPIServerMetrics(t *testing.T) {
	_, api := newTestDaemon(t)

	metrics := decodeBody[fusion.Metrics](t, get(t, api.URL+"/api/metrics"))
	if metrics != fusion.DemoMetrics() {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestAPIServerEventsWithoutPersistence(t *testing.T) {
	_, api := newTestDaemon(t, testsupport.WithoutPersistence())

	events := decodeBody[EventListResponse](t, get(t, api.URL+"/api/events"))
	if events.Events == nil || len(events.Events) != 0 {
		t.Fatalf("expected empty event list, got %+v", events.Events)
	}

	resp := get(t, api.URL+"/api/events?limit=abc")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := authMiddleware("secret", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic secret", want: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer secret", want: http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler(w, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}

	if open := authMiddleware("", handler); open == nil {
		t.Fatal("expected passthrough handler")
	}
}

func newSceneDataServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/002/timestamps.json":             `{"FRAME": {"0": 0.0, "1": 0.1, "2": 0.2}}`,
		"/002/track/track_ids.json":        `{"0": 7, "1": 42}`,
		"/002/track/track_camera_vis.json": `{"7": {"1": [0]}, "42": {"0": [0]}}`,
		"/002/extrinsics/0.txt":            "1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1",
		"/002/intrinsics/0.txt":            "960 960 960 540",
		"/002/ego_pose/000000.txt":         "1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1",
		"/002/ego_pose/000001.txt":         "1 0 0 1 0 1 0 0 0 0 1 0 0 0 0 1",
		"/002/ego_pose/000002.txt":         "1 0 0 2 0 1 0 0 0 0 1 0 0 0 0 1",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIServerDetections(t *testing.T) {
	scene := newSceneDataServer(t)
	_, api := newTestDaemon(t, testsupport.WithSceneData(scene.URL, "002", 1))

	report := decodeBody[DetectionReport](t, get(t, api.URL+"/api/detections?frame=1"))
	if report.TotalFrames != 3 || report.FusionMode != manifest.FusionSingleAgent {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Result.DetectedCount != 1 || report.Result.Detected[0] != 7 {
		t.Fatalf("expected track 7 detected, got %+v", report.Result)
	}
	if report.Result.Total != 2 {
		t.Fatalf("expected both tracks present in window, got %d", report.Result.Total)
	}
	if len(report.Images) != 1 || !strings.HasSuffix(report.Images[0], "/002/images/000001_0.png") {
		t.Fatalf("unexpected image urls: %v", report.Images)
	}

	resp := post(t, api.URL+"/api/modes", `{"fusion":"ground_truth"}`)
	resp.Body.Close()
	report = decodeBody[DetectionReport](t, get(t, api.URL+"/api/detections?frame=1"))
	if report.Result.DetectedCount != 2 {
		t.Fatalf("expected ground truth to detect every present track, got %+v", report.Result)
	}

	resp = get(t, api.URL+"/api/detections?frame=9")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range frame, got %d", resp.StatusCode)
	}
}

func TestAPIServerDetectionsDisabled(t *testing.T) {
	_, api := newTestDaemon(t)

	resp := get(t, api.URL+"/api/detections?frame=0")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when scene data is not configured, got %d", resp.StatusCode)
	}
}
