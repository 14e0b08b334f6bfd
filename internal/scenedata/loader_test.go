package scenedata_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"vogsdemo/internal/scenedata"
	"vogsdemo/internal/services"
)

func identityWith(x, y, z float64) string {
	return fmt.Sprintf("1 0 0 %g 0 1 0 %g 0 0 1 %g 0 0 0 1", x, y, z)
}

type sceneServer struct {
	*httptest.Server
	timestampHits atomic.Int32
	requests      atomic.Int32
	files         map[string]string
}

func newSceneServer(t *testing.T) *sceneServer {
	t.Helper()
	s := &sceneServer{files: map[string]string{
		"/002/timestamps.json":             `{"FRAME": {"0": 0.0, "1": 0.1, "2": 0.2}}`,
		"/002/track/track_ids.json":        `{"1": 42, "0": 7, "10": 99}`,
		"/002/track/track_camera_vis.json": `{"7": {"0": [0], "1": [0, 1]}, "42": {"2": [1]}}`,
		"/002/extrinsics/0.txt":            "1 0 0.5 1.5 0 1 0.8 -0.2 0 0 1 1.6 0 0 0 1",
		"/002/extrinsics/1.txt":            "1 0 -0.5 -1.0 0 1 0.1 0.3 0 0 1 1.6 0 0 0 1",
		"/002/intrinsics/0.txt":            "960 960 960 540",
		"/002/intrinsics/1.txt":            "1000 1000 960 540",
		"/002/ego_pose/000000.txt":         identityWith(10, 20, 1),
		"/002/ego_pose/000001.txt":         identityWith(11, 22, 1),
		"/002/ego_pose/000002.txt":         identityWith(13, 25, 1),
	}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if r.URL.Path == "/002/timestamps.json" {
			s.timestampHits.Add(1)
		}
		body, ok := s.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func newLoader(srv *sceneServer) *scenedata.Loader {
	return scenedata.NewLoader(scenedata.Config{
		BaseURL:     srv.URL + "/",
		SceneID:     "002",
		CameraCount: 2,
		BatchSize:   2,
	}, srv.Client(), nil)
}

func TestLoadParsesScene(t *testing.T) {
	srv := newSceneServer(t)
	loader := newLoader(srv)

	var (
		mu        sync.Mutex
		fractions []float64
	)
	loader.SetProgress(func(fraction float64, _ string) {
		mu.Lock()
		fractions = append(fractions, fraction)
		mu.Unlock()
	})

	data, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if data.TotalFrames != 3 || data.CameraCount != 2 || data.SceneID != "002" {
		t.Fatalf("unexpected scene header: %+v", data)
	}
	if got := fmt.Sprint(data.TrackIDs); got != "[7 42 99]" {
		t.Fatalf("track ids = %s", got)
	}
	if len(data.EgoPoses) != 3 {
		t.Fatalf("expected 3 poses, got %d", len(data.EgoPoses))
	}
	if p := data.EgoPoses[0]; p.X != 0 || p.Y != 0 || p.Z != 1 {
		t.Fatalf("frame 0 pose should be at origin: %+v", p)
	}
	if p := data.EgoPoses[2]; p.X != 3 || p.Y != 5 {
		t.Fatalf("frame 2 pose = %+v", p)
	}
	cam0 := data.CameraCalibrations[0]
	if math.Abs(cam0.HFOV-math.Pi/2) > 1e-9 {
		t.Fatalf("camera 0 hfov = %f, want pi/2", cam0.HFOV)
	}
	if cam0.DirX != 0.5 || cam0.DirY != 0.8 || cam0.PosX != 1.5 || cam0.PosY != -0.2 || cam0.Label != "Front" {
		t.Fatalf("unexpected camera 0 calibration: %+v", cam0)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(fractions) == 0 || fractions[0] != 0 || fractions[len(fractions)-1] != 1 {
		t.Fatalf("unexpected progress: %v", fractions)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backwards: %v", fractions)
		}
	}
}

func TestLoadCachesAndSharesInFlight(t *testing.T) {
	srv := newSceneServer(t)
	loader := newLoader(srv)

	var wg sync.WaitGroup
	results := make([]*scenedata.SceneData, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := loader.Load(context.Background())
			if err != nil {
				t.Errorf("Load failed: %v", err)
				return
			}
			results[i] = data
		}()
	}
	wg.Wait()

	before := srv.requests.Load()
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if srv.requests.Load() != before {
		t.Fatal("expected cached load to skip the network")
	}
	if hits := srv.timestampHits.Load(); hits != 1 {
		t.Fatalf("expected one metadata fetch, got %d", hits)
	}
	for _, data := range results {
		if data != results[0] {
			t.Fatal("expected every caller to share the same scene data")
		}
	}
}

func TestLoadReportsMissingFiles(t *testing.T) {
	srv := newSceneServer(t)
	delete(srv.files, "/002/ego_pose/000001.txt")
	loader := newLoader(srv)

	_, err := loader.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing ego pose")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "000001.txt") {
		t.Fatalf("expected url in error, got %v", err)
	}
}

func TestLoadRejectsMalformedPose(t *testing.T) {
	srv := newSceneServer(t)
	srv.files["/002/ego_pose/000002.txt"] = "1 2 3"
	loader := newLoader(srv)

	_, err := loader.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "expected 16 values in ego_pose, got 3") {
		t.Fatalf("expected pose parse error, got %v", err)
	}
}

func TestFrameURLs(t *testing.T) {
	loader := scenedata.NewLoader(scenedata.Config{
		BaseURL:     "https://cdn.example/",
		SceneID:     "002",
		CameraCount: 2,
	}, nil, nil)

	images := loader.FrameImageURLs(7)
	if len(images) != 2 || images[1] != "https://cdn.example/002/images/000007_1.png" {
		t.Fatalf("unexpected image urls: %v", images)
	}
	masks := loader.DynamicMaskURLs(123)
	if masks[0] != "https://cdn.example/002/dynamic_mask/000123_0.png" {
		t.Fatalf("unexpected mask urls: %v", masks)
	}
}
