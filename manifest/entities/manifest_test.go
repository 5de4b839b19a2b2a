package entities

import (
	"errors"
	"strings"
	"testing"

	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

func mustID(t *testing.T, s string) values.ModelID {
	t.Helper()
	id, err := values.NewModelID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func validDescriptor() FileDescriptor {
	return FileDescriptor{
		Size:   10,
		SHA256: strings.Repeat("ab", 32),
	}
}

func validEntry(id string) ModelEntry {
	return ModelEntry{
		ID:      id,
		Name:    "Test Model",
		BaseURL: "https://models.example.com/" + id,
		Files: map[string]FileDescriptor{
			"driving_policy.onnx": validDescriptor(),
			"driving_vision.onnx": validDescriptor(),
		},
		MinimumSelectorVersion: 1,
	}
}

func validManifest() Manifest {
	return Manifest{
		Version:   SchemaVersion,
		UpdatedAt: "2026-08-23T10:00:00Z",
		Models:    []ModelEntry{validEntry("m1")},
	}
}

func TestManifest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		m := validManifest()
		if err := m.Validate(); err != nil {
			t.Errorf("Validate() failed: %v", err)
		}
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		m := validManifest()
		m.Version = 99
		assertStructural(t, m.Validate())
	})

	t.Run("BadTimestamp", func(t *testing.T) {
		m := validManifest()
		m.UpdatedAt = "2026-08-23 10:00:00"
		assertStructural(t, m.Validate())
	})

	t.Run("EmptyTimestampAllowed", func(t *testing.T) {
		// Unsigned manifests produced by BuildManifest are stamped later.
		m := validManifest()
		m.UpdatedAt = ""
		if err := m.Validate(); err != nil {
			t.Errorf("Validate() failed: %v", err)
		}
	})

	t.Run("DuplicateModelID", func(t *testing.T) {
		m := validManifest()
		m.Models = append(m.Models, validEntry("m1"))
		assertStructural(t, m.Validate())
	})

	t.Run("MissingRequiredFile", func(t *testing.T) {
		m := validManifest()
		delete(m.Models[0].Files, "driving_vision.onnx")
		assertStructural(t, m.Validate())
	})

	t.Run("ExtraFile", func(t *testing.T) {
		m := validManifest()
		m.Models[0].Files["extra.onnx"] = validDescriptor()
		assertStructural(t, m.Validate())
	})

	t.Run("BadDigest", func(t *testing.T) {
		m := validManifest()
		m.Models[0].Files["driving_policy.onnx"] = FileDescriptor{Size: 10, SHA256: "nothex"}
		assertStructural(t, m.Validate())
	})

	t.Run("NegativeSize", func(t *testing.T) {
		m := validManifest()
		m.Models[0].Files["driving_policy.onnx"] = FileDescriptor{Size: -1, SHA256: strings.Repeat("ab", 32)}
		assertStructural(t, m.Validate())
	})

	t.Run("InvalidModelID", func(t *testing.T) {
		m := validManifest()
		m.Models[0].ID = "Has Spaces"
		assertStructural(t, m.Validate())
	})

	t.Run("EmptyName", func(t *testing.T) {
		m := validManifest()
		m.Models[0].Name = ""
		assertStructural(t, m.Validate())
	})

	t.Run("ZeroSelectorVersion", func(t *testing.T) {
		m := validManifest()
		m.Models[0].MinimumSelectorVersion = 0
		assertStructural(t, m.Validate())
	})
}

func assertStructural(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected structural error, got nil")
	}
	if !errors.Is(err, ErrStructuralInvalid) {
		t.Errorf("expected ErrStructuralInvalid, got %v", err)
	}
}

func TestManifest_WithoutSignature(t *testing.T) {
	m := validManifest()
	m.KeyID = "k1"
	m.Signature = "c2lnbmF0dXJl"

	unsigned := m.WithoutSignature()

	if unsigned.Signature != "" {
		t.Error("signature should be cleared")
	}
	if unsigned.KeyID != "k1" {
		t.Error("key_id must stay inside the signed payload")
	}
	if m.Signature == "" {
		t.Error("original manifest must not be mutated")
	}

	// The models slice is a copy, not shared backing storage.
	unsigned.Models[0].Name = "changed"
	if m.Models[0].Name == "changed" {
		t.Error("WithoutSignature must not alias the models slice")
	}
}

func TestManifest_FindModel(t *testing.T) {
	m := validManifest()

	entry, err := m.FindModel(mustID(t, "m1"))
	if err != nil {
		t.Fatalf("FindModel() failed: %v", err)
	}
	if entry.ID != "m1" {
		t.Errorf("FindModel() = %s, want m1", entry.ID)
	}

	_, err = m.FindModel(mustID(t, "missing"))
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestRequiredFiles(t *testing.T) {
	files, err := RequiredFiles(SchemaVersion)
	if err != nil {
		t.Fatalf("RequiredFiles() failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("RequiredFiles() = %v, want 2 entries", files)
	}

	if _, err := RequiredFiles(2); err == nil {
		t.Error("unknown schema version should be rejected")
	}
}

func TestManifest_IsSigned(t *testing.T) {
	m := validManifest()
	if m.IsSigned() {
		t.Error("unsigned manifest reported as signed")
	}
	m.KeyID = "k1"
	m.Signature = "c2ln"
	if !m.IsSigned() {
		t.Error("signed manifest reported as unsigned")
	}
}
