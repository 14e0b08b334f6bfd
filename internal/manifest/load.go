package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load reads and decodes the manifest at path. It does not validate the
// contract; call Validate for that.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a manifest document.
func Parse(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// LoadRaw decodes the manifest into an untyped document for contract checks
// that must see missing or mistyped fields.
func LoadRaw(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return doc, nil
}
