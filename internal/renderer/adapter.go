package renderer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"vogsdemo/internal/logging"
	"vogsdemo/internal/manifest"
	"vogsdemo/internal/sceneasset"
)

// SplatRecordBytes is the size of one packed gaussian splat record.
const SplatRecordBytes = 32

// ErrDisposed is returned when loading into a disposed adapter.
var ErrDisposed = errors.New("renderer has been disposed")

// Summary describes the currently loaded scene.
type Summary struct {
	SceneID     string            `json:"sceneId"`
	AssetURL    string            `json:"assetUrl"`
	Format      sceneasset.Format `json:"format"`
	SizeBytes   int64             `json:"sizeBytes"`
	Vertices    int               `json:"vertices,omitempty"`
	Splats      int               `json:"splats,omitempty"`
	GLTFVersion string            `json:"gltfVersion,omitempty"`
}

// Stats reports mutation counters.
type Stats struct {
	FusionMutations         int  `json:"fusionMutations"`
	RepresentationMutations int  `json:"representationMutations"`
	Loads                   int  `json:"loads"`
	Disposed                bool `json:"disposed"`
}

// Adapter is a headless renderer. It is safe for concurrent use.
type Adapter struct {
	logger *slog.Logger

	mu                      sync.Mutex
	summary                 *Summary
	fusionMode              manifest.FusionMode
	representationMode      manifest.RepresentationMode
	fusionMutations         int
	representationMutations int
	loads                   int
	disposals               int
	disposed                bool
}

// NewAdapter constructs a headless renderer.
func NewAdapter(logger *slog.Logger) *Adapter {
	return &Adapter{logger: logging.NewComponentLogger(logger, "renderer")}
}

// Load validates payload and makes it the active scene.
func (a *Adapter) Load(ctx context.Context, payload *sceneasset.ParsedScenePayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if payload == nil {
		return errors.New("renderer received an empty payload")
	}
	summary, err := summarize(payload)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return ErrDisposed
	}
	a.summary = &summary
	a.loads++
	logging.WithContext(ctx, a.logger).Info("scene loaded into renderer",
		logging.SceneID(summary.SceneID),
		logging.String("format", string(summary.Format)),
		logging.SizeBytes(summary.SizeBytes),
	)
	return nil
}

// ApplyFusionMode records a fusion mode change; repeated modes are no-ops.
func (a *Adapter) ApplyFusionMode(mode manifest.FusionMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fusionMode == mode {
		return
	}
	a.fusionMode = mode
	a.fusionMutations++
}

// ApplyRepresentationMode records a representation change; repeated modes are no-ops.
func (a *Adapter) ApplyRepresentationMode(mode manifest.RepresentationMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.representationMode == mode {
		return
	}
	a.representationMode = mode
	a.representationMutations++
}

// Summary returns the active scene, if any.
func (a *Adapter) Summary() (Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary == nil {
		return Summary{}, false
	}
	return *a.summary, true
}

// Stats returns mutation counters.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		FusionMutations:         a.fusionMutations,
		RepresentationMutations: a.representationMutations,
		Loads:                   a.loads,
		Disposed:                a.disposed,
	}
}

// Disposals reports how many times Dispose released resources.
func (a *Adapter) Disposals() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.disposals
}

// Dispose drops the active scene and mode state. Calling it again is a no-op.
func (a *Adapter) Dispose() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disposed {
		return
	}
	a.disposed = true
	a.disposals++
	a.summary = nil
	a.fusionMode = ""
	a.representationMode = ""
	a.logger.Debug("renderer disposed")
}

func summarize(payload *sceneasset.ParsedScenePayload) (Summary, error) {
	summary := Summary{
		SceneID:   payload.SceneID,
		AssetURL:  payload.AssetURL,
		Format:    payload.Format,
		SizeBytes: payload.SizeBytes,
	}
	switch payload.Format {
	case sceneasset.FormatPLY:
		text, ok := payload.Data.(string)
		if !ok {
			return summary, fmt.Errorf("ply payload must be text, got %T", payload.Data)
		}
		vertices, err := plyVertexCount(text)
		if err != nil {
			return summary, err
		}
		summary.Vertices = vertices
	case sceneasset.FormatSplat:
		raw, ok := payload.Data.([]byte)
		if !ok {
			return summary, fmt.Errorf("splat payload must be binary, got %T", payload.Data)
		}
		if len(raw) == 0 || len(raw)%SplatRecordBytes != 0 {
			return summary, fmt.Errorf("splat payload length %d is not a multiple of %d bytes", len(raw), SplatRecordBytes)
		}
		summary.Splats = len(raw) / SplatRecordBytes
	case sceneasset.FormatGLTF:
		doc, ok := payload.Data.(map[string]any)
		if !ok {
			return summary, fmt.Errorf("gltf payload must be a JSON object, got %T", payload.Data)
		}
		asset, ok := doc["asset"].(map[string]any)
		if !ok {
			return summary, errors.New("gltf payload is missing the asset object")
		}
		version, _ := asset["version"].(string)
		if strings.TrimSpace(version) == "" {
			return summary, errors.New("gltf asset object is missing a version")
		}
		summary.GLTFVersion = version
	default:
		return summary, fmt.Errorf("unsupported payload format %q", payload.Format)
	}
	return summary, nil
}

// plyVertexCount reads the ASCII header and returns the declared vertex count.
func plyVertexCount(text string) (int, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return 0, errors.New("ply payload is missing the ply magic line")
	}
	vertices := 0
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "end_header":
			return vertices, nil
		case "element":
			if len(fields) == 3 && fields[1] == "vertex" {
				n, err := strconv.Atoi(fields[2])
				if err != nil || n < 0 {
					return 0, fmt.Errorf("ply vertex count %q is invalid", fields[2])
				}
				vertices = n
			}
		}
	}
	return 0, errors.New("ply header is missing end_header")
}
