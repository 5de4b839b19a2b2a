// Package canonical produces the deterministic byte representation of a
// manifest, the payload both signing and verification operate on. Any
// divergence between the two sides is a protocol-breaking bug, so there
// is exactly one encoder and it follows RFC 8785 (JCS).
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// signatureField is the only field stripped from the signed payload.
// key_id stays inside it: a signature must not be replayable under a
// different claimed key id.
const signatureField = "signature"

// Encode returns the canonical byte sequence for the manifest.
//
// The manifest is structurally validated first; encoding never repairs
// invalid input. The signature field is removed, every object's keys are
// sorted per RFC 8785, and the models sequence keeps the order the
// producer gave it.
func Encode(m *entities.Manifest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prepare manifest for canonicalization: %w", err)
	}
	delete(raw, signatureField)

	buffer := new(bytes.Buffer)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(raw); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	canonical, err := jsoncanonicalizer.Transform(buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("cannot canonicalize json: %w", err)
	}
	return canonical, nil
}
