package fusion

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vogsdemo/internal/manifest"
)

var acronyms = map[string]string{
	string(manifest.FusionVOGS): "VOGS",
}

// ModeLabel renders a fusion or representation mode for display, e.g.
// "naive_fusion" becomes "Naive Fusion".
func ModeLabel[T ~string](mode T) string {
	raw := strings.TrimSpace(string(mode))
	if label, ok := acronyms[raw]; ok {
		return label
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(raw, "_", " "))
}

// StatusLabel renders a load status for display.
func StatusLabel(status LoadStatus) string {
	return cases.Title(language.Und).String(string(status))
}
