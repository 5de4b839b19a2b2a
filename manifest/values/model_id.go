package values

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ModelID represents a validated model slug.
// The slug doubles as the folder name the artifacts live under, so it
// must stay filesystem- and URL-safe.
type ModelID struct {
	value string
}

// NewModelID creates a ModelID with strict validation.
// A valid model id must:
// - Be non-empty
// - contain only lowercase alphanumeric characters, underscores, and hyphens
// - NOT contain paths, dots, or special characters
// - Be at most 64 characters long
func NewModelID(id string) (ModelID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ModelID{}, fmt.Errorf("model id cannot be empty")
	}

	if len(id) > 64 {
		return ModelID{}, fmt.Errorf("model id too long (max 64 chars)")
	}

	// Security check: Path separators
	if strings.ContainsAny(id, `/\`) {
		return ModelID{}, fmt.Errorf("model id cannot contain path separators")
	}

	// Security check: Directory traversal
	if strings.Contains(id, "..") {
		return ModelID{}, fmt.Errorf("model id cannot contain parent directory references")
	}

	for _, ch := range id {
		if !isValidModelIDChar(ch) {
			return ModelID{}, fmt.Errorf("invalid model id %q: must contain only lowercase alphanumeric characters, underscores, and hyphens", id)
		}
	}

	return ModelID{value: id}, nil
}

func isValidModelIDChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '_' ||
		r == '-'
}

// MustNewModelID creates a ModelID or panics
func MustNewModelID(id string) ModelID {
	m, err := NewModelID(id)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the string representation
func (m ModelID) String() string {
	return m.value
}

// IsEmpty returns true if this is the zero value
func (m ModelID) IsEmpty() bool {
	return m.value == ""
}

// Equals checks if two model ids are equal
func (m ModelID) Equals(other ModelID) bool {
	return m.value == other.value
}

// MarshalJSON implements json.Marshaler.
// Uses json.Marshal for proper character escaping.
func (m ModelID) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *ModelID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid model id JSON: %w", err)
	}

	id, err := NewModelID(s)
	if err != nil {
		return err
	}
	*m = id
	return nil
}
