// Package entities defines the manifest data model and its structural
// invariants. A manifest describes every distributable model, the exact
// content of each artifact, and the signature that makes it trustworthy.
package entities

import (
	"net/url"
	"time"

	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

// SchemaVersion is the current manifest schema version.
const SchemaVersion = 1

// TimestampFormat is the wire format of updated_at: RFC 3339 at second
// precision, always UTC.
const TimestampFormat = "2006-01-02T15:04:05Z"

// requiredFilesV1 is the artifact set every v1 model entry must carry,
// exactly: no omissions, no extras.
var requiredFilesV1 = []string{
	"driving_policy.onnx",
	"driving_vision.onnx",
}

// RequiredFiles returns the exact artifact filenames a model entry must
// declare for the given schema version.
func RequiredFiles(version int) ([]string, error) {
	if version != SchemaVersion {
		return nil, &StructuralError{Field: "version", Reason: "unsupported schema version"}
	}
	out := make([]string, len(requiredFilesV1))
	copy(out, requiredFilesV1)
	return out, nil
}

// FileDescriptor pins one artifact's exact content: its byte length and
// the SHA-256 digest of that content, recomputed on every builder run.
type FileDescriptor struct {
	Size   int64  `json:"size" yaml:"size"`
	SHA256 string `json:"sha256" yaml:"sha256"`
}

// Validate checks the descriptor's field invariants.
func (d FileDescriptor) Validate() error {
	if d.Size < 0 {
		return &StructuralError{Field: "size", Reason: "must be >= 0"}
	}
	if _, err := values.NewDigest(d.SHA256); err != nil {
		return &StructuralError{Field: "sha256", Reason: err.Error()}
	}
	return nil
}

// Digest returns the descriptor's hash as a value object.
// Validate must have passed for the result to be meaningful.
func (d FileDescriptor) Digest() (values.Digest, error) {
	return values.NewDigest(d.SHA256)
}

// ModelEntry describes one distributable model: a stable slug, a display
// name, where its artifacts are fetched from, and the pinned content of
// every required artifact file.
type ModelEntry struct {
	ID                     string                    `json:"id" yaml:"id"`
	Name                   string                    `json:"name" yaml:"name"`
	BaseURL                string                    `json:"base_url" yaml:"base_url"`
	Files                  map[string]FileDescriptor `json:"files" yaml:"files"`
	MinimumSelectorVersion int                       `json:"minimum_selector_version" yaml:"minimum_selector_version"`
}

// Validate checks the entry against the schema version's invariants.
func (m ModelEntry) Validate(version int) error {
	if _, err := values.NewModelID(m.ID); err != nil {
		return &StructuralError{Field: "id", Reason: err.Error()}
	}
	if m.Name == "" {
		return &StructuralError{Field: "name", Reason: "cannot be empty"}
	}
	if m.BaseURL == "" {
		return &StructuralError{Field: "base_url", Reason: "cannot be empty"}
	}
	if _, err := url.Parse(m.BaseURL); err != nil {
		return &StructuralError{Field: "base_url", Reason: "not a valid URL"}
	}
	if m.MinimumSelectorVersion < 1 {
		return &StructuralError{Field: "minimum_selector_version", Reason: "must be >= 1"}
	}

	required, err := RequiredFiles(version)
	if err != nil {
		return err
	}
	if len(m.Files) != len(required) {
		return &StructuralError{
			Field:  "files",
			Reason: "must contain exactly the required artifact filenames",
		}
	}
	for _, name := range required {
		desc, ok := m.Files[name]
		if !ok {
			return &StructuralError{Field: "files", Reason: "missing required file " + name}
		}
		if err := desc.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Manifest is the signed document describing all available models.
// It is rebuilt in full on every producer run and immutable once
// transported: consumers only read and validate it.
type Manifest struct {
	Version   int          `json:"version" yaml:"version"`
	UpdatedAt string       `json:"updated_at" yaml:"updated_at"`
	Models    []ModelEntry `json:"models" yaml:"models"`
	KeyID     string       `json:"key_id" yaml:"key_id"`
	Signature string       `json:"signature" yaml:"signature"`
}

// Validate checks the manifest's structural invariants. It does not touch
// the signature; structural validity is a precondition of canonical
// encoding, not a trust statement.
func (m *Manifest) Validate() error {
	if m.Version != SchemaVersion {
		return &StructuralError{Field: "version", Reason: "unsupported schema version"}
	}
	if m.UpdatedAt != "" {
		if _, err := time.Parse(TimestampFormat, m.UpdatedAt); err != nil {
			return &StructuralError{Field: "updated_at", Reason: "must be a UTC RFC 3339 timestamp"}
		}
	}

	seen := make(map[string]struct{}, len(m.Models))
	for _, entry := range m.Models {
		if err := entry.Validate(m.Version); err != nil {
			return err
		}
		if _, dup := seen[entry.ID]; dup {
			return &StructuralError{Field: "models", Reason: "duplicate model id " + entry.ID}
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}

// FindModel returns the entry with the given id.
func (m *Manifest) FindModel(id values.ModelID) (ModelEntry, error) {
	for _, entry := range m.Models {
		if entry.ID == id.String() {
			return entry, nil
		}
	}
	return ModelEntry{}, &ModelNotFoundError{ID: id}
}

// WithoutSignature returns a copy of the manifest with the signature
// cleared. This is the exact value the canonical encoder operates on:
// key_id stays inside the signed payload so a signature cannot be
// replayed under a different claimed key id.
func (m *Manifest) WithoutSignature() Manifest {
	out := *m
	out.Signature = ""
	out.Models = make([]ModelEntry, len(m.Models))
	copy(out.Models, m.Models)
	return out
}

// IsSigned reports whether the manifest carries a signature and key id.
func (m *Manifest) IsSigned() bool {
	return m.Signature != "" && m.KeyID != ""
}
