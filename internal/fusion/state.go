package fusion

import "vogsdemo/internal/manifest"

// LoadStatus is the lifecycle position of the current scene load.
type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadLoading LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadFailed  LoadStatus = "failed"
)

// LoadStateError is the code and message shown for a failed load.
type LoadStateError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SceneLoadState is replaced as a whole on every transition.
type SceneLoadState struct {
	Status LoadStatus      `json:"status"`
	Error  *LoadStateError `json:"error"`
}

// State is a snapshot of the shared demo state.
type State struct {
	FusionMode         manifest.FusionMode         `json:"fusionMode"`
	RepresentationMode manifest.RepresentationMode `json:"representationMode"`
	LoadState          SceneLoadState              `json:"loadState"`
}

// InitialState is the state before any user interaction.
func InitialState() State {
	return State{
		FusionMode:         manifest.FusionSingleAgent,
		RepresentationMode: manifest.RepresentationOccupancy,
		LoadState:          SceneLoadState{Status: LoadIdle},
	}
}
