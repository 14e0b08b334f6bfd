package scenedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/services"
)

const defaultBatchSize = 20

// Config locates the recorded scene.
type Config struct {
	BaseURL     string
	SceneID     string
	CameraCount int
	BatchSize   int
	UserAgent   string
}

// ProgressFunc receives load progress as a fraction in [0, 1].
type ProgressFunc func(fraction float64, message string)

// Loader fetches and caches SceneData.
type Loader struct {
	cfg    Config
	client services.HTTPDoer
	logger *slog.Logger
	group  singleflight.Group

	mu       sync.Mutex
	cached   *SceneData
	progress ProgressFunc
}

// NewLoader constructs a scene data loader. A nil client uses http.DefaultClient.
func NewLoader(cfg Config, client services.HTTPDoer, logger *slog.Logger) *Loader {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.SceneID = strings.Trim(strings.TrimSpace(cfg.SceneID), "/")
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "scenedata"),
	}
}

// SetProgress installs a progress callback for subsequent loads.
func (l *Loader) SetProgress(fn ProgressFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = fn
}

// Load returns the scene, fetching it on first use. Concurrent callers share
// a single in-flight fetch.
func (l *Loader) Load(ctx context.Context) (*SceneData, error) {
	l.mu.Lock()
	cached := l.cached
	l.mu.Unlock()
	if cached != nil {
		l.logger.Debug("returning cached scene data")
		return cached, nil
	}

	value, err, shared := l.group.Do(l.sceneBase(), func() (any, error) {
		l.mu.Lock()
		cached := l.cached
		l.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		data, err := l.fetchSceneData(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cached = data
		l.mu.Unlock()
		return data, nil
	})
	if shared {
		l.logger.Debug("joined in-flight scene data load")
	}
	if err != nil {
		return nil, err
	}
	return value.(*SceneData), nil
}

// FrameImageURLs returns one camera image URL per camera for frameIndex.
func (l *Loader) FrameImageURLs(frameIndex int) []string {
	return l.frameURLs("images", frameIndex)
}

// DynamicMaskURLs returns one dynamic mask URL per camera for frameIndex.
func (l *Loader) DynamicMaskURLs(frameIndex int) []string {
	return l.frameURLs("dynamic_mask", frameIndex)
}

func (l *Loader) frameURLs(kind string, frameIndex int) []string {
	urls := make([]string, 0, l.cfg.CameraCount)
	for cam := 0; cam < l.cfg.CameraCount; cam++ {
		urls = append(urls, fmt.Sprintf("%s/%s/%06d_%d.png", l.sceneBase(), kind, frameIndex, cam))
	}
	return urls
}

func (l *Loader) sceneBase() string {
	return l.cfg.BaseURL + "/" + l.cfg.SceneID
}

func (l *Loader) emitProgress(fraction float64, message string) {
	l.mu.Lock()
	fn := l.progress
	l.mu.Unlock()
	if fn != nil {
		fn(fraction, message)
	}
}

func (l *Loader) fetchSceneData(ctx context.Context) (*SceneData, error) {
	base := l.sceneBase()
	started := time.Now()
	l.logger.Info("loading scene metadata", logging.String("base_url", base))
	l.emitProgress(0, "Loading metadata...")

	var (
		timestamps map[string]map[string]float64
		trackIDs   map[string]int
		vis        TrackCameraVis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetchJSON(gctx, base+"/timestamps.json", &timestamps) })
	g.Go(func() error { return l.fetchJSON(gctx, base+"/track/track_ids.json", &trackIDs) })
	g.Go(func() error { return l.fetchJSON(gctx, base+"/track/track_camera_vis.json", &vis) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	frameTimestamps := timestamps["FRAME"]
	if frameTimestamps == nil {
		frameTimestamps = map[string]float64{}
	}
	totalFrames := len(frameTimestamps)
	ids := orderedTrackIDs(trackIDs)
	l.logger.Info("scene metadata loaded",
		logging.Int("frames", totalFrames),
		logging.Int("tracks", len(ids)),
	)
	l.emitProgress(0.15, "Loading camera calibration...")

	calibrations, err := l.loadCalibrations(ctx, base)
	if err != nil {
		return nil, err
	}
	l.emitProgress(0.25, "Loading ego poses...")

	poses, err := l.loadEgoPoses(ctx, base, totalFrames)
	if err != nil {
		return nil, err
	}
	l.emitProgress(1, "Scene data ready")

	if vis == nil {
		vis = TrackCameraVis{}
	}
	data := &SceneData{
		SceneID:            l.cfg.SceneID,
		TotalFrames:        totalFrames,
		CameraCount:        l.cfg.CameraCount,
		Timestamps:         frameTimestamps,
		TrackIDs:           ids,
		TrackCameraVis:     vis,
		EgoPoses:           poses,
		CameraCalibrations: calibrations,
	}
	l.logger.Info("scene data loaded",
		logging.Int("frames", totalFrames),
		logging.Int("cameras", l.cfg.CameraCount),
		logging.Int("tracks", len(ids)),
		logging.Int("poses", len(poses)),
		logging.Duration("duration", time.Since(started)),
	)
	return data, nil
}

func (l *Loader) loadCalibrations(ctx context.Context, base string) ([]CameraCalibration, error) {
	calibrations := make([]CameraCalibration, l.cfg.CameraCount)
	g, gctx := errgroup.WithContext(ctx)
	for cam := 0; cam < l.cfg.CameraCount; cam++ {
		g.Go(func() error {
			extText, err := l.fetchText(gctx, fmt.Sprintf("%s/extrinsics/%d.txt", base, cam))
			if err != nil {
				return err
			}
			intrText, err := l.fetchText(gctx, fmt.Sprintf("%s/intrinsics/%d.txt", base, cam))
			if err != nil {
				return err
			}
			extrinsic, err := parseMatrix4x4(extText)
			if err != nil {
				return fmt.Errorf("camera %d extrinsics: %w", cam, err)
			}
			intr, err := parseIntrinsics(intrText)
			if err != nil {
				return fmt.Errorf("camera %d intrinsics: %w", cam, err)
			}
			calibrations[cam] = calibrationFor(cam, extrinsic, intr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, cal := range calibrations {
		l.logger.Debug("camera calibration",
			logging.Int("camera", cal.CameraIndex),
			logging.String("hfov_deg", strconv.FormatFloat(cal.HFOV*180/math.Pi, 'f', 1, 64)),
		)
	}
	return calibrations, nil
}

func (l *Loader) loadEgoPoses(ctx context.Context, base string, totalFrames int) ([]EgoPose, error) {
	poses := make([]EgoPose, totalFrames)
	loaded := 0
	for batchStart := 0; batchStart < totalFrames; batchStart += l.cfg.BatchSize {
		batchEnd := min(batchStart+l.cfg.BatchSize, totalFrames)
		g, gctx := errgroup.WithContext(ctx)
		for frame := batchStart; frame < batchEnd; frame++ {
			g.Go(func() error {
				text, err := l.fetchText(gctx, fmt.Sprintf("%s/ego_pose/%06d.txt", base, frame))
				if err != nil {
					return err
				}
				pose, err := parseEgoPose(text)
				if err != nil {
					return fmt.Errorf("frame %d ego pose: %w", frame, err)
				}
				poses[frame] = pose
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		loaded += batchEnd - batchStart
		l.emitProgress(0.25+0.75*float64(loaded)/float64(totalFrames),
			fmt.Sprintf("Loading ego poses... %d/%d", loaded, totalFrames))
	}
	return normalizePoses(poses)
}

func (l *Loader) fetchJSON(ctx context.Context, url string, out any) error {
	body, err := l.fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrValidation, "scenedata", "decode", url, err)
	}
	return nil
}

func (l *Loader) fetchText(ctx context.Context, url string) (string, error) {
	body, err := l.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scene data request: %w", err)
	}
	if l.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", l.cfg.UserAgent)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "scenedata", "fetch", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		marker := services.ErrUpstream
		if resp.StatusCode == http.StatusNotFound {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "scenedata", "fetch",
			fmt.Sprintf("failed to fetch %s: %s", url, resp.Status), nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scenedata", "read", url, err)
	}
	return body, nil
}

// orderedTrackIDs returns the published track ids ordered by their numeric key.
func orderedTrackIDs(raw map[string]int) []int {
	type keyed struct {
		key   int
		order string
		id    int
	}
	entries := make([]keyed, 0, len(raw))
	for k, id := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			n = -1
		}
		entries = append(entries, keyed{key: n, order: k, id: id})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].order < entries[j].order
	})
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}
