package sceneasset

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"
)

// Format identifies how an asset body is decoded.
type Format string

const (
	FormatPLY   Format = "ply"
	FormatSplat Format = "splat"
	FormatGLTF  Format = "gltf"
)

// Formats lists every supported asset format.
var Formats = []Format{FormatPLY, FormatSplat, FormatGLTF}

// ResolveFormat derives the asset format from the URL's final extension,
// ignoring any query string and letter case.
func ResolveFormat(rawURL string) (Format, error) {
	path, _, _ := strings.Cut(rawURL, "?")
	idx := strings.LastIndex(path, ".")
	if idx >= 0 {
		ext := Format(strings.ToLower(path[idx+1:]))
		for _, format := range Formats {
			if ext == format {
				return format, nil
			}
		}
	}
	names := make([]string, len(Formats))
	for i, format := range Formats {
		names[i] = string(format)
	}
	return "", newParseError(nil, "Asset format is not allowed. Supported formats: %s.", strings.Join(names, ", "))
}

// decodeBody reads the response body according to format.
func decodeBody(body io.Reader, format Format) (any, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, newParseError(err, "Asset parse failed: %v", err)
	}
	switch format {
	case FormatGLTF:
		var doc any
		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		if err := decoder.Decode(&doc); err != nil {
			return nil, newParseError(err, "Asset parse failed: %v", err)
		}
		return doc, nil
	case FormatPLY:
		if !utf8.Valid(raw) {
			return strings.ToValidUTF8(string(raw), "�"), nil
		}
		return string(raw), nil
	case FormatSplat:
		return raw, nil
	default:
		return nil, newParseError(nil, "Asset parse failed: unsupported format %q", format)
	}
}
