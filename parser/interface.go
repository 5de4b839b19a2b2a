// Package parser provides functionality for parsing model manifests.
package parser

import "github.com/modeldist-dev/modeldist-sdk/manifest/entities"

// ManifestParser parses raw manifest bytes into a Manifest.
type ManifestParser interface {
	// Parse unmarshals manifest bytes into a Manifest struct.
	Parse(data []byte) (*entities.Manifest, error)
}
