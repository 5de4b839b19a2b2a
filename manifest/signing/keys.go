// Package signing holds the producer-side Ed25519 signer and its key
// management. The private key never leaves the signing environment; the
// public key is exported for out-of-band embedding into consumer trust
// stores.
package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// Standard key filenames inside a key directory.
const (
	PrivateKeyFile = "private_key.pem"
	PublicKeyFile  = "public_key.pem"
)

const (
	privateKeyPEMType = "PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"
)

// GenerateKeyPair creates a fresh Ed25519 keypair and persists both halves
// under dir (PKCS#8 private key, PKIX public key, PEM encoded).
//
// An existing private key is never overwritten: overwriting would
// invalidate every previously signed manifest's trust chain without a
// coordinated rotation. Callers that really want a new key must remove
// the old one first.
func GenerateKeyPair(dir string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create key directory: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate keypair: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("encode private key: %w", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: privDER})

	privPath := filepath.Join(dir, PrivateKeyFile)
	f, err := os.OpenFile(filepath.Clean(privPath), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, nil, &entities.KeyError{
				Reason: fmt.Sprintf("private key already exists at %s, refusing to overwrite", privPath),
				Err:    err,
			}
		}
		return nil, nil, fmt.Errorf("create private key file: %w", err)
	}
	if _, err := f.Write(privPEM); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("write private key: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, nil, fmt.Errorf("close private key file: %w", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("encode public key: %w", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: pubDER})
	if err := os.WriteFile(filepath.Join(dir, PublicKeyFile), pubPEM, 0o644); err != nil {
		return nil, nil, fmt.Errorf("write public key: %w", err)
	}

	return priv, pub, nil
}

// LoadPrivateKey reads a PEM-encoded PKCS#8 Ed25519 private key.
// A missing or unreadable key is fatal to the signing operation in
// progress; no partial manifest is ever written.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &entities.KeyError{Reason: "cannot read private key file", Err: err}
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, &entities.KeyError{Reason: "not a PEM-encoded private key"}
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, &entities.KeyError{Reason: "cannot parse private key", Err: err}
	}

	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, &entities.KeyError{Reason: "private key is not Ed25519"}
	}
	return priv, nil
}

// LoadPublicKey reads a PEM-encoded PKIX Ed25519 public key.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &entities.KeyError{Reason: "cannot read public key file", Err: err}
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyPEMType {
		return nil, &entities.KeyError{Reason: "not a PEM-encoded public key"}
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, &entities.KeyError{Reason: "cannot parse public key", Err: err}
	}

	pub, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, &entities.KeyError{Reason: "public key is not Ed25519"}
	}
	return pub, nil
}

// EncodePublicKey returns the raw public key bytes as base64, the form
// embedded into consumer trust stores.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}
