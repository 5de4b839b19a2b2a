// Package verify implements the consumer side of the manifest protocol.
// The signature check gates everything: no hash or size value from a
// manifest may be computed against or trusted until the signature over
// the canonical bytes has been verified against a trusted key.
package verify

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/modeldist-dev/modeldist-sdk/manifest/canonical"
	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/trust"
)

// Status is the outcome of manifest-level verification.
type Status string

const (
	// StatusValid means the signature verified against a trusted key.
	StatusValid Status = "valid"

	// StatusUntrustedKey means the manifest's key_id is not in the trust
	// store. There is no fallback to "no signature required".
	StatusUntrustedKey Status = "untrusted_key"

	// StatusBadSignature means the signature did not verify against the
	// trusted key selected by key_id. The manifest as a whole is
	// untrusted; no individual entry may be selectively trusted.
	StatusBadSignature Status = "bad_signature"
)

// Result reports manifest-level verification.
type Result struct {
	Status Status
	KeyID  string
	Err    error
}

// Valid reports whether the manifest may be trusted.
func (r Result) Valid() bool {
	return r.Status == StatusValid
}

// Verify checks a manifest's signature against the trust store.
//
// The key_id is looked up first; an unknown key short-circuits before any
// cryptographic work. The canonical bytes are then recomputed with the
// identical encoder used at signing time and the Ed25519 signature is
// checked. Structural errors abort with no trust granted.
func Verify(m *entities.Manifest, store *trust.Store) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	pub, ok := store.Lookup(m.KeyID)
	if !ok {
		return Result{
			Status: StatusUntrustedKey,
			KeyID:  m.KeyID,
			Err:    &entities.KeyError{KeyID: m.KeyID, Reason: "key id not in trust store"},
		}, nil
	}

	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return Result{
			Status: StatusBadSignature,
			KeyID:  m.KeyID,
			Err:    &entities.SignatureError{KeyID: m.KeyID},
		}, nil
	}

	unsigned := m.WithoutSignature()
	payload, err := canonical.Encode(&unsigned)
	if err != nil {
		return Result{}, err
	}

	if !ed25519.Verify(pub, payload, sig) {
		return Result{
			Status: StatusBadSignature,
			KeyID:  m.KeyID,
			Err:    &entities.SignatureError{KeyID: m.KeyID},
		}, nil
	}

	return Result{Status: StatusValid, KeyID: m.KeyID}, nil
}
