package scenedata

import (
	"slices"
	"strconv"
	"sync"

	"vogsdemo/internal/manifest"
)

const (
	// presenceWindow is how many frames before and after a frame a track may
	// be seen and still count as present.
	presenceWindow  = 5
	vogsRevealRate  = 0.85
	naiveRevealRate = 0.50
)

// VisibilityResult is the detection outcome for one frame and fusion mode.
type VisibilityResult struct {
	Detected      []int `json:"detected"`
	Total         int   `json:"total"`
	DetectedCount int   `json:"detectedCount"`
	PerCamera     []int `json:"perCamera"`
}

// Visibility answers per-frame track detection queries.
type Visibility struct {
	vis         map[int]map[int][]int
	totalFrames int

	mu       sync.Mutex
	presence map[int]map[int]struct{}
}

// NewVisibility indexes the camera visibility table for totalFrames frames.
func NewVisibility(vis TrackCameraVis, totalFrames int) *Visibility {
	index := make(map[int]map[int][]int, len(vis))
	for trackKey, frames := range vis {
		trackID, err := strconv.Atoi(trackKey)
		if err != nil {
			continue
		}
		byFrame := make(map[int][]int, len(frames))
		for frameKey, cameras := range frames {
			frame, err := strconv.Atoi(frameKey)
			if err != nil {
				continue
			}
			byFrame[frame] = cameras
		}
		index[trackID] = byFrame
	}
	return &Visibility{
		vis:         index,
		totalFrames: totalFrames,
		presence:    make(map[int]map[int]struct{}),
	}
}

// SingleAgentVisible returns tracks seen by at least one camera at frame.
func (v *Visibility) SingleAgentVisible(frame int) []int {
	return sortedIDs(v.singleAgent(frame))
}

// TracksPresent returns tracks seen within the presence window around frame.
func (v *Visibility) TracksPresent(frame int) []int {
	return sortedIDs(v.present(frame))
}

// PerCameraTrackCounts counts tracks seen by each camera at frame.
func (v *Visibility) PerCameraTrackCounts(frame, cameraCount int) []int {
	counts := make([]int, max(cameraCount, 0))
	for _, frames := range v.vis {
		for _, cam := range frames[frame] {
			if cam >= 0 && cam < cameraCount {
				counts[cam]++
			}
		}
	}
	return counts
}

// Compute returns the tracks detected at frame under mode. Occluded tracks
// are revealed deterministically per track id so results are stable.
func (v *Visibility) Compute(frame int, mode manifest.FusionMode, cameraCount int) VisibilityResult {
	single := v.singleAgent(frame)
	present := v.present(frame)

	var detected map[int]struct{}
	switch mode {
	case manifest.FusionGroundTruth:
		detected = present
	case manifest.FusionVOGS:
		detected = reveal(single, present, vogsRevealRate)
	case manifest.FusionNaive:
		detected = reveal(single, present, naiveRevealRate)
	default:
		detected = single
	}
	ids := sortedIDs(detected)
	return VisibilityResult{
		Detected:      ids,
		Total:         len(present),
		DetectedCount: len(ids),
		PerCamera:     v.PerCameraTrackCounts(frame, cameraCount),
	}
}

func (v *Visibility) singleAgent(frame int) map[int]struct{} {
	visible := make(map[int]struct{})
	for trackID, frames := range v.vis {
		if len(frames[frame]) > 0 {
			visible[trackID] = struct{}{}
		}
	}
	return visible
}

func (v *Visibility) present(frame int) map[int]struct{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	if cached, ok := v.presence[frame]; ok {
		return cached
	}
	start := max(0, frame-presenceWindow)
	end := min(v.totalFrames-1, frame+presenceWindow)
	present := make(map[int]struct{})
	for trackID, frames := range v.vis {
		for f := start; f <= end; f++ {
			if len(frames[f]) > 0 {
				present[trackID] = struct{}{}
				break
			}
		}
	}
	v.presence[frame] = present
	return present
}

func reveal(single, present map[int]struct{}, rate float64) map[int]struct{} {
	detected := make(map[int]struct{}, len(present))
	for id := range single {
		detected[id] = struct{}{}
	}
	for id := range present {
		if _, seen := single[id]; seen {
			continue
		}
		if deterministicReveal(id, rate) {
			detected[id] = struct{}{}
		}
	}
	return detected
}

func deterministicReveal(trackID int, rate float64) bool {
	hash := (trackID*7 + 3) % 100
	return float64(hash) < rate*100
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
