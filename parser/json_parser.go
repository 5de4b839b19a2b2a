package parser

import (
	"bytes"
	"encoding/json"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// JSONManifestParser implements ManifestParser for JSON, the wire format
// manifests are transported in. Unknown fields are rejected.
type JSONManifestParser struct{}

// NewJSONManifestParser creates a new JSONManifestParser.
func NewJSONManifestParser() ManifestParser {
	return &JSONManifestParser{}
}

// Parse unmarshals JSON bytes into a Manifest struct.
func (p *JSONManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var manifest entities.Manifest
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifest); err != nil {
		return nil, &entities.StructuralError{Reason: err.Error()}
	}
	return &manifest, nil
}
