package signing

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modeldist-dev/modeldist-sdk/manifest/canonical"
	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// Signer produces deterministic Ed25519 signatures over the canonical
// byte representation of a manifest. Signing the same canonical bytes
// with the same key yields bit-identical signatures.
type Signer struct {
	priv   ed25519.PrivateKey
	logger *slog.Logger
	mu     sync.Mutex
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SignerOption {
	return func(s *Signer) { s.logger = l }
}

// NewSigner creates a signer holding the given private key.
func NewSigner(priv ed25519.PrivateKey, opts ...SignerOption) (*Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, &entities.KeyError{Reason: "private key has wrong size for Ed25519"}
	}
	s := &Signer{
		priv:   priv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign returns a copy of the manifest with key_id and signature populated.
//
// The signature covers the canonical encoding of the manifest with the
// signature field omitted and key_id included. Structural errors
// propagate before any signature is attempted; the input manifest is
// never mutated. After signing, the signature is checked against the
// signer's own public key as a built-in regression test that signing and
// verification canonicalization agree.
func (s *Signer) Sign(m *entities.Manifest, keyID string) (entities.Manifest, error) {
	if keyID == "" {
		return entities.Manifest{}, &entities.KeyError{Reason: "key id cannot be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	signed := m.WithoutSignature()
	signed.KeyID = keyID

	payload, err := canonical.Encode(&signed)
	if err != nil {
		return entities.Manifest{}, err
	}

	sig := ed25519.Sign(s.priv, payload)
	signed.Signature = base64.StdEncoding.EncodeToString(sig)

	if err := s.VerifyOwn(&signed); err != nil {
		return entities.Manifest{}, fmt.Errorf("post-sign self check: %w", err)
	}

	s.logger.Debug("manifest signed",
		"key_id", keyID,
		"models", len(signed.Models),
		"payload_bytes", len(payload))

	return signed, nil
}

// VerifyOwn checks a signed manifest against the signer's own public key.
func (s *Signer) VerifyOwn(m *entities.Manifest) error {
	pub, ok := s.priv.Public().(ed25519.PublicKey)
	if !ok {
		return &entities.KeyError{Reason: "cannot derive public key"}
	}

	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil {
		return &entities.SignatureError{KeyID: m.KeyID}
	}

	unsigned := m.WithoutSignature()
	payload, err := canonical.Encode(&unsigned)
	if err != nil {
		return err
	}

	if !ed25519.Verify(pub, payload, sig) {
		return &entities.SignatureError{KeyID: m.KeyID}
	}
	return nil
}
