package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ManifestVersion is the only manifest schema version this reader accepts.
const ManifestVersion = 1

// ManifestName is the mandatory archive member carrying bundle metadata.
const ManifestName = "manifest.json"

// ManifestEntry describes one file referenced from a manifest's files map.
type ManifestEntry struct {
	Platform string `json:"platform" validate:"required,oneof=cf1 cf2 deck"`
	Target   string `json:"target" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=fw"`
}

// Manifest is the parsed form of manifest.json. Files preserves the JSON
// object's key order so artifact emission order is reproducible.
type Manifest struct {
	Version int                                            `json:"version"`
	Files   *orderedmap.OrderedMap[string, ManifestEntry] `json:"files"`
}

var validate = validator.New()

// parseManifest decodes and validates raw manifest.json bytes.
func parseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("manifest: invalid json: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("manifest: unsupported version %d, want %d", m.Version, ManifestVersion)
	}
	if m.Files == nil {
		return nil, fmt.Errorf("manifest: missing files map")
	}

	for pair := m.Files.Oldest(); pair != nil; pair = pair.Next() {
		if err := validate.Struct(pair.Value); err != nil {
			return nil, fmt.Errorf("manifest: entry %q: %w", pair.Key, err)
		}
	}

	return &m, nil
}
