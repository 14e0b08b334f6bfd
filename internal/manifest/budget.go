package manifest

// DefaultBudgetBytes is the per-scene asset budget.
const DefaultBudgetBytes int64 = 2_000_000

// BudgetViolation reports a scene whose assets exceed the budget.
type BudgetViolation struct {
	SceneID     string `json:"sceneId"`
	DisplayName string `json:"displayName"`
	TotalBytes  int64  `json:"totalBytes"`
}

// BudgetViolations returns every scene whose summed asset sizes exceed
// thresholdBytes. A non-positive threshold uses DefaultBudgetBytes.
func BudgetViolations(m *Manifest, thresholdBytes int64) []BudgetViolation {
	if m == nil {
		return nil
	}
	if thresholdBytes <= 0 {
		thresholdBytes = DefaultBudgetBytes
	}
	var violations []BudgetViolation
	for _, scene := range m.Scenes {
		total := scene.TotalBytes()
		if total <= thresholdBytes {
			continue
		}
		sceneID := scene.SceneID
		if sceneID == "" {
			sceneID = "unknown"
		}
		name := scene.DisplayName
		if name == "" {
			name = "Unnamed Scene"
		}
		violations = append(violations, BudgetViolation{SceneID: sceneID, DisplayName: name, TotalBytes: total})
	}
	return violations
}
