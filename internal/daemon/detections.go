package daemon

import (
	"fmt"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/scenedata"
	"vogsdemo/internal/services"
)

// DetectionReport is the per-frame detection view under the active fusion mode.
type DetectionReport struct {
	Frame       int                        `json:"frame"`
	TotalFrames int                        `json:"totalFrames"`
	FusionMode  manifest.FusionMode        `json:"fusionMode"`
	Result      scenedata.VisibilityResult `json:"result"`
	Images      []string                   `json:"images"`
	Masks       []string                   `json:"masks"`
}

// Detections loads the recorded scene on first use and reports which tracks
// the active fusion mode detects at frame.
func (d *Daemon) Detections(frame int) (DetectionReport, error) {
	if d.sceneData == nil {
		return DetectionReport{}, services.Wrap(services.ErrNotFound, "daemon", "detections", "scene data is not configured", nil)
	}
	// Loads are shared between callers, so they run under the daemon
	// lifetime rather than any one request.
	data, err := d.sceneData.Load(d.lifetime)
	if err != nil {
		return DetectionReport{}, err
	}
	if frame < 0 || frame >= data.TotalFrames {
		return DetectionReport{}, services.Wrap(services.ErrValidation, "daemon", "detections",
			fmt.Sprintf("frame %d is outside 0..%d", frame, data.TotalFrames-1), nil)
	}

	mode := d.state.State().FusionMode
	return DetectionReport{
		Frame:       frame,
		TotalFrames: data.TotalFrames,
		FusionMode:  mode,
		Result:      d.visibilityFor(data).Compute(frame, mode, data.CameraCount),
		Images:      d.sceneData.FrameImageURLs(frame),
		Masks:       d.sceneData.DynamicMaskURLs(frame),
	}, nil
}

func (d *Daemon) visibilityFor(data *scenedata.SceneData) *scenedata.Visibility {
	d.visMu.Lock()
	defer d.visMu.Unlock()
	if d.visibility == nil {
		d.visibility = scenedata.NewVisibility(data.TrackCameraVis, data.TotalFrames)
	}
	return d.visibility
}

func newSceneDataLoader(d *Daemon, client services.HTTPDoer) *scenedata.Loader {
	cfg := d.cfg.SceneData
	if cfg.BaseURL == "" {
		return nil
	}
	loader := scenedata.NewLoader(scenedata.Config{
		BaseURL:     cfg.BaseURL,
		SceneID:     cfg.SceneID,
		CameraCount: cfg.CameraCount,
		BatchSize:   cfg.BatchSize,
		UserAgent:   d.cfg.Assets.UserAgent,
	}, client, d.logger)
	loader.SetProgress(func(fraction float64, message string) {
		d.logger.Debug("scene data progress",
			logging.Int("percent", int(fraction*100)),
			logging.String("stage", message),
		)
	})
	return loader
}
