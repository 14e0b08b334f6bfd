package manifest

import (
	"fmt"
	"math"
	"strings"
)

// ValidateDocument checks an untyped manifest document against the manifest
// contract and returns every violation found. An empty slice means the
// document is valid.
func ValidateDocument(doc any) []string {
	var errs []string

	root, ok := doc.(map[string]any)
	if !ok {
		return append(errs, "Manifest root must be an object.")
	}

	if _, ok := root["version"].(string); !ok {
		errs = append(errs, "Manifest.version is required and must be a string.")
	}
	if _, ok := root["generatedAt"].(string); !ok {
		errs = append(errs, "Manifest.generatedAt is required and must be a string.")
	}

	scenes, ok := root["scenes"].([]any)
	if !ok {
		return append(errs, "Manifest.scenes is required and must be an array.")
	}

	for sceneIndex, rawScene := range scenes {
		scenePath := fmt.Sprintf("Manifest.scenes[%d]", sceneIndex)
		scene, ok := rawScene.(map[string]any)
		if !ok {
			errs = append(errs, scenePath+" must be an object.")
			continue
		}

		if _, ok := scene["sceneId"].(string); !ok {
			errs = append(errs, scenePath+".sceneId is required and must be a string.")
		}
		if _, ok := scene["displayName"].(string); !ok {
			errs = append(errs, scenePath+".displayName is required and must be a string.")
		}
		if mode, ok := scene["defaultFusionMode"].(string); !ok || !FusionMode(mode).Valid() {
			errs = append(errs, fmt.Sprintf("%s.defaultFusionMode must be one of: %s.", scenePath, joinModes(FusionModes)))
		}
		if mode, ok := scene["defaultRepresentationMode"].(string); !ok || !RepresentationMode(mode).Valid() {
			errs = append(errs, fmt.Sprintf("%s.defaultRepresentationMode must be one of: %s.", scenePath, joinModes(RepresentationModes)))
		}

		assets, ok := scene["assets"].([]any)
		if !ok {
			errs = append(errs, scenePath+".assets is required and must be an array.")
			continue
		}
		for assetIndex, rawAsset := range assets {
			assetPath := fmt.Sprintf("%s.assets[%d]", scenePath, assetIndex)
			asset, ok := rawAsset.(map[string]any)
			if !ok {
				errs = append(errs, assetPath+" must be an object.")
				continue
			}
			if _, ok := asset["id"].(string); !ok {
				errs = append(errs, assetPath+".id is required and must be a string.")
			}
			if _, ok := asset["url"].(string); !ok {
				errs = append(errs, assetPath+".url is required and must be a string.")
			}
			if size, ok := asset["sizeBytes"].(float64); !ok || math.IsNaN(size) || math.IsInf(size, 0) {
				errs = append(errs, assetPath+".sizeBytes is required and must be a number.")
			}
		}
	}

	return errs
}

// Validate checks a decoded manifest. Typed decoding already guarantees field
// types, so this focuses on mode values and the at-least-one-asset invariant.
func Validate(m *Manifest) []string {
	if m == nil {
		return []string{"Manifest root must be an object."}
	}
	var errs []string
	if strings.TrimSpace(m.Version) == "" {
		errs = append(errs, "Manifest.version is required and must be a string.")
	}
	seen := make(map[string]struct{}, len(m.Scenes))
	for i, scene := range m.Scenes {
		scenePath := fmt.Sprintf("Manifest.scenes[%d]", i)
		if strings.TrimSpace(scene.SceneID) == "" {
			errs = append(errs, scenePath+".sceneId is required and must be a string.")
		} else if _, dup := seen[scene.SceneID]; dup {
			errs = append(errs, fmt.Sprintf("%s.sceneId %q is duplicated.", scenePath, scene.SceneID))
		} else {
			seen[scene.SceneID] = struct{}{}
		}
		if !scene.DefaultFusionMode.Valid() {
			errs = append(errs, fmt.Sprintf("%s.defaultFusionMode must be one of: %s.", scenePath, joinModes(FusionModes)))
		}
		if !scene.DefaultRepresentationMode.Valid() {
			errs = append(errs, fmt.Sprintf("%s.defaultRepresentationMode must be one of: %s.", scenePath, joinModes(RepresentationModes)))
		}
		if len(scene.Assets) == 0 {
			errs = append(errs, scenePath+".assets must contain at least one asset.")
		}
		for j, asset := range scene.Assets {
			if strings.TrimSpace(asset.URL) == "" {
				errs = append(errs, fmt.Sprintf("%s.assets[%d].url is required and must be a string.", scenePath, j))
			}
			if asset.SizeBytes < 0 {
				errs = append(errs, fmt.Sprintf("%s.assets[%d].sizeBytes must not be negative.", scenePath, j))
			}
		}
	}
	return errs
}

func joinModes[T ~string](modes []T) string {
	parts := make([]string, len(modes))
	for i, mode := range modes {
		parts[i] = string(mode)
	}
	return strings.Join(parts, ", ")
}
