package verify

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/signing"
	"github.com/modeldist-dev/modeldist-sdk/manifest/trust"
	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

func testManifest() entities.Manifest {
	return entities.Manifest{
		Version:   entities.SchemaVersion,
		UpdatedAt: "2026-08-23T10:00:00Z",
		Models: []entities.ModelEntry{
			{
				ID:      "m1",
				Name:    "Model One",
				BaseURL: "https://models.example.com/m1",
				Files: map[string]entities.FileDescriptor{
					"driving_policy.onnx": {Size: 10, SHA256: values.ComputeDigest([]byte("policy")).String()},
					"driving_vision.onnx": {Size: 20, SHA256: values.ComputeDigest([]byte("vision")).String()},
				},
				MinimumSelectorVersion: 1,
			},
		},
	}
}

type keyFixture struct {
	signer *signing.Signer
	pub    ed25519.PublicKey
}

func newKeyFixture(t *testing.T) keyFixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	s, err := signing.NewSigner(priv)
	if err != nil {
		t.Fatal(err)
	}
	return keyFixture{signer: s, pub: pub}
}

func storeWith(t *testing.T, keyID string, pub ed25519.PublicKey) *trust.Store {
	t.Helper()
	store := trust.NewStore()
	if err := store.Add(keyID, pub); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestVerify_SignThenVerify(t *testing.T) {
	k1 := newKeyFixture(t)
	m := testManifest()

	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	result, err := Verify(&signed, storeWith(t, "k1", k1.pub))
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if !result.Valid() || result.Status != StatusValid {
		t.Errorf("Verify() = %v, want Valid", result.Status)
	}
}

func TestVerify_UntrustedKey(t *testing.T) {
	k1 := newKeyFixture(t)
	k2 := newKeyFixture(t)
	m := testManifest()

	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatal(err)
	}

	// The signature is valid under k1, but the trust store only knows
	// k2: the key id lookup must fail before any cryptographic check.
	result, err := Verify(&signed, storeWith(t, "k2", k2.pub))
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result.Status != StatusUntrustedKey {
		t.Errorf("Verify() = %v, want UntrustedKey", result.Status)
	}
	if !errors.Is(result.Err, entities.ErrKeyUnavailable) {
		t.Errorf("result error = %v, want ErrKeyUnavailable", result.Err)
	}
}

func TestVerify_FlippedSignatureBytes(t *testing.T) {
	k1 := newKeyFixture(t)
	m := testManifest()

	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatal(err)
	}
	store := storeWith(t, "k1", k1.pub)

	sig, err := base64.StdEncoding.DecodeString(signed.Signature)
	if err != nil {
		t.Fatal(err)
	}

	for i := range sig {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		flipped[i] ^= 0x01

		tampered := signed
		tampered.Signature = base64.StdEncoding.EncodeToString(flipped)

		result, err := Verify(&tampered, store)
		if err != nil {
			t.Fatalf("Verify() failed at byte %d: %v", i, err)
		}
		if result.Status != StatusBadSignature {
			t.Fatalf("flipping signature byte %d: got %v, want BadSignature", i, result.Status)
		}
	}
}

func TestVerify_MutatedContent(t *testing.T) {
	k1 := newKeyFixture(t)
	m := testManifest()

	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatal(err)
	}
	store := storeWith(t, "k1", k1.pub)

	t.Run("ChangedSize", func(t *testing.T) {
		tampered := signed
		tampered.Models = make([]entities.ModelEntry, len(signed.Models))
		copy(tampered.Models, signed.Models)
		tampered.Models[0].Files = map[string]entities.FileDescriptor{}
		for name, desc := range signed.Models[0].Files {
			tampered.Models[0].Files[name] = desc
		}
		desc := tampered.Models[0].Files["driving_policy.onnx"]
		desc.Size = 11
		tampered.Models[0].Files["driving_policy.onnx"] = desc

		result, err := Verify(&tampered, store)
		if err != nil {
			t.Fatalf("Verify() failed: %v", err)
		}
		if result.Status != StatusBadSignature {
			t.Errorf("Verify() = %v, want BadSignature", result.Status)
		}
	})

	t.Run("ChangedDigest", func(t *testing.T) {
		tampered := signed
		tampered.Models = make([]entities.ModelEntry, len(signed.Models))
		copy(tampered.Models, signed.Models)
		tampered.Models[0].Files = map[string]entities.FileDescriptor{}
		for name, desc := range signed.Models[0].Files {
			tampered.Models[0].Files[name] = desc
		}
		desc := tampered.Models[0].Files["driving_vision.onnx"]
		desc.SHA256 = strings.Repeat("ee", 32)
		tampered.Models[0].Files["driving_vision.onnx"] = desc

		result, err := Verify(&tampered, store)
		if err != nil {
			t.Fatalf("Verify() failed: %v", err)
		}
		if result.Status != StatusBadSignature {
			t.Errorf("Verify() = %v, want BadSignature", result.Status)
		}
	})

	t.Run("ChangedTimestamp", func(t *testing.T) {
		tampered := signed
		tampered.UpdatedAt = "2026-08-24T10:00:00Z"

		result, err := Verify(&tampered, store)
		if err != nil {
			t.Fatalf("Verify() failed: %v", err)
		}
		if result.Status != StatusBadSignature {
			t.Errorf("Verify() = %v, want BadSignature", result.Status)
		}
	})
}

func TestVerify_MissingSignature(t *testing.T) {
	k1 := newKeyFixture(t)
	m := testManifest()
	m.KeyID = "k1"

	result, err := Verify(&m, storeWith(t, "k1", k1.pub))
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result.Status != StatusBadSignature {
		t.Errorf("Verify() = %v, want BadSignature", result.Status)
	}
}

func TestVerify_StructuralErrorAborts(t *testing.T) {
	k1 := newKeyFixture(t)
	m := testManifest()

	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatal(err)
	}
	signed.Models = append(signed.Models, signed.Models[0]) // duplicate id

	_, err = Verify(&signed, storeWith(t, "k1", k1.pub))
	if !errors.Is(err, entities.ErrStructuralInvalid) {
		t.Errorf("expected ErrStructuralInvalid, got %v", err)
	}
}

// TestVerify_Scenario walks the protocol's reference scenario: one model,
// signed with k1, checked against several trust stores and a post-signing
// edit.
func TestVerify_Scenario(t *testing.T) {
	k1 := newKeyFixture(t)
	k2 := newKeyFixture(t)

	m := testManifest()
	signed, err := k1.signer.Sign(&m, "k1")
	if err != nil {
		t.Fatal(err)
	}

	result, err := Verify(&signed, storeWith(t, "k1", k1.pub))
	if err != nil || result.Status != StatusValid {
		t.Errorf("trusted k1: got %v (err %v), want Valid", result.Status, err)
	}

	result, err = Verify(&signed, storeWith(t, "k2", k2.pub))
	if err != nil || result.Status != StatusUntrustedKey {
		t.Errorf("trusted k2 only: got %v (err %v), want UntrustedKey", result.Status, err)
	}

	edited := signed
	edited.Models = make([]entities.ModelEntry, len(signed.Models))
	copy(edited.Models, signed.Models)
	edited.Models[0].Files = map[string]entities.FileDescriptor{}
	for name, desc := range signed.Models[0].Files {
		edited.Models[0].Files[name] = desc
	}
	desc := edited.Models[0].Files["driving_policy.onnx"]
	desc.Size = 11
	edited.Models[0].Files["driving_policy.onnx"] = desc

	result, err = Verify(&edited, storeWith(t, "k1", k1.pub))
	if err != nil || result.Status != StatusBadSignature {
		t.Errorf("edited size: got %v (err %v), want BadSignature", result.Status, err)
	}
}
