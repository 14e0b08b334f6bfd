package scenedata

// TrackCameraVis maps track id → frame index → camera indices that see the
// track. Keys are decimal strings as published with the scene.
type TrackCameraVis map[string]map[string][]int

// EgoPose is a vehicle pose with position relative to frame 0.
type EgoPose struct {
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Z       float64   `json:"z"`
	Heading float64   `json:"heading"`
	Matrix  []float64 `json:"matrix"`
}

// CameraCalibration describes one camera relative to the vehicle.
type CameraCalibration struct {
	CameraIndex int       `json:"cameraIndex"`
	Label       string    `json:"label"`
	Extrinsic   []float64 `json:"extrinsic"`
	DirX        float64   `json:"dirX"`
	DirY        float64   `json:"dirY"`
	HFOV        float64   `json:"hfov"`
	PosX        float64   `json:"posX"`
	PosY        float64   `json:"posY"`
}

// SceneData is the fully loaded scene.
type SceneData struct {
	SceneID            string              `json:"sceneId"`
	TotalFrames        int                 `json:"totalFrames"`
	CameraCount        int                 `json:"cameraCount"`
	Timestamps         map[string]float64  `json:"timestamps"`
	TrackIDs           []int               `json:"trackIds"`
	TrackCameraVis     TrackCameraVis      `json:"trackCameraVis"`
	EgoPoses           []EgoPose           `json:"egoPoses"`
	CameraCalibrations []CameraCalibration `json:"cameraCalibrations"`
}

var cameraLabels = []string{"Front", "Front-Left", "Front-Right", "Rear-Left", "Rear-Right"}
