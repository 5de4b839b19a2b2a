package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// YamlManifestParser implements ManifestParser for YAML. YAML manifests
// are a producer-side convenience; the signed wire format is JSON.
type YamlManifestParser struct{}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser() ManifestParser {
	return &YamlManifestParser{}
}

// Parse unmarshals YAML bytes into a Manifest struct.
func (p *YamlManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var manifest entities.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, &entities.StructuralError{Reason: err.Error()}
	}
	return &manifest, nil
}
