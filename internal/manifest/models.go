package manifest

// FusionMode selects which perception result the demo visualizes.
type FusionMode string

const (
	FusionSingleAgent FusionMode = "single_agent"
	FusionNaive       FusionMode = "naive_fusion"
	FusionVOGS        FusionMode = "vogs"
	FusionGroundTruth FusionMode = "ground_truth"
)

// FusionModes lists every supported fusion mode in display order.
var FusionModes = []FusionMode{FusionSingleAgent, FusionNaive, FusionVOGS, FusionGroundTruth}

// Valid reports whether m is a known fusion mode.
func (m FusionMode) Valid() bool {
	for _, candidate := range FusionModes {
		if m == candidate {
			return true
		}
	}
	return false
}

// RepresentationMode selects how the scene geometry is drawn.
type RepresentationMode string

const (
	RepresentationOccupancy RepresentationMode = "occupancy"
	RepresentationGaussian  RepresentationMode = "gaussian"
)

// RepresentationModes lists every supported representation mode.
var RepresentationModes = []RepresentationMode{RepresentationOccupancy, RepresentationGaussian}

// Valid reports whether m is a known representation mode.
func (m RepresentationMode) Valid() bool {
	for _, candidate := range RepresentationModes {
		if m == candidate {
			return true
		}
	}
	return false
}

// Asset is a single loadable file declared by a scene.
type Asset struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Entry describes one demo scene. The first asset is the primary asset
// consumed by the scene loader.
type Entry struct {
	SceneID                   string             `json:"sceneId"`
	DisplayName               string             `json:"displayName"`
	DefaultFusionMode         FusionMode         `json:"defaultFusionMode"`
	DefaultRepresentationMode RepresentationMode `json:"defaultRepresentationMode"`
	Assets                    []Asset            `json:"assets"`
}

// PrimaryAsset returns the first declared asset.
func (e Entry) PrimaryAsset() (Asset, bool) {
	if len(e.Assets) == 0 {
		return Asset{}, false
	}
	return e.Assets[0], true
}

// TotalBytes sums the declared size of every asset in the scene.
func (e Entry) TotalBytes() int64 {
	var total int64
	for _, asset := range e.Assets {
		total += asset.SizeBytes
	}
	return total
}

// Manifest is the root scene manifest document.
type Manifest struct {
	Version     string  `json:"version"`
	GeneratedAt string  `json:"generatedAt"`
	Scenes      []Entry `json:"scenes"`
}

// Find returns the scene with the given identifier.
func (m *Manifest) Find(sceneID string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	for _, scene := range m.Scenes {
		if scene.SceneID == sceneID {
			return scene, true
		}
	}
	return Entry{}, false
}
