package scenedata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// imageWidth is the assumed sensor width in pixels.
const imageWidth = 1920

func parseFloats(text string) ([]float64, error) {
	fields := strings.Fields(text)
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", field, err)
		}
		values[i] = v
	}
	return values, nil
}

func parseMatrix4x4(text string) ([]float64, error) {
	values, err := parseFloats(text)
	if err != nil {
		return nil, err
	}
	if len(values) != 16 {
		return nil, fmt.Errorf("expected 16 values in 4x4 matrix, got %d", len(values))
	}
	return values, nil
}

// parseEgoPose reads a row-major 4x4 pose. Translation sits at indices 3, 7
// and 11; heading is atan2(R[1][0], R[0][0]).
func parseEgoPose(text string) (EgoPose, error) {
	values, err := parseFloats(text)
	if err != nil {
		return EgoPose{}, err
	}
	if len(values) != 16 {
		return EgoPose{}, fmt.Errorf("expected 16 values in ego_pose, got %d", len(values))
	}
	return EgoPose{
		X:       values[3],
		Y:       values[7],
		Z:       values[11],
		Heading: math.Atan2(values[4], values[0]),
		Matrix:  values,
	}, nil
}

type intrinsics struct {
	fx, fy, cx, cy float64
}

func parseIntrinsics(text string) (intrinsics, error) {
	values, err := parseFloats(text)
	if err != nil {
		return intrinsics{}, err
	}
	if len(values) < 4 {
		return intrinsics{}, fmt.Errorf("expected 4 intrinsic values, got %d", len(values))
	}
	if values[0] <= 0 {
		return intrinsics{}, errors.New("intrinsic fx must be positive")
	}
	return intrinsics{fx: values[0], fy: values[1], cx: values[2], cy: values[3]}, nil
}

// calibrationFor derives the camera frame from its extrinsic: the rotation's
// third column is the forward direction and the last column the position.
func calibrationFor(camera int, extrinsic []float64, intr intrinsics) CameraCalibration {
	label := fmt.Sprintf("Camera %d", camera)
	if camera < len(cameraLabels) {
		label = cameraLabels[camera]
	}
	return CameraCalibration{
		CameraIndex: camera,
		Label:       label,
		Extrinsic:   extrinsic,
		DirX:        extrinsic[2],
		DirY:        extrinsic[6],
		HFOV:        2 * math.Atan((imageWidth/2)/intr.fx),
		PosX:        extrinsic[3],
		PosY:        extrinsic[7],
	}
}

// normalizePoses shifts every pose so frame 0 sits at the origin in x and y.
func normalizePoses(poses []EgoPose) ([]EgoPose, error) {
	if len(poses) == 0 {
		return poses, nil
	}
	origin := poses[0]
	if origin.Matrix == nil {
		return nil, errors.New("failed to load frame 0 ego pose")
	}
	out := make([]EgoPose, len(poses))
	for i, pose := range poses {
		if pose.Matrix == nil {
			out[i] = EgoPose{Matrix: make([]float64, 16)}
			continue
		}
		pose.X -= origin.X
		pose.Y -= origin.Y
		out[i] = pose
	}
	return out, nil
}
