// Package trust holds the consumer's root of trust: an explicit mapping
// from key_id to Ed25519 public key. A Store is a plain value threaded
// into every verification call; there is no process-wide singleton.
package trust

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// Store maps key ids to Ed25519 public keys.
type Store struct {
	keys map[string]ed25519.PublicKey
}

// NewStore creates an empty trust store.
func NewStore() *Store {
	return &Store{keys: make(map[string]ed25519.PublicKey)}
}

// NewStoreFromBase64 creates a store from key_id to base64-encoded raw
// public key bytes, the form keys are embedded in consumer code.
func NewStoreFromBase64(keys map[string]string) (*Store, error) {
	s := NewStore()
	for keyID, encoded := range keys {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &entities.KeyError{KeyID: keyID, Reason: "invalid base64 public key", Err: err}
		}
		if err := s.Add(keyID, raw); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a public key under a key id.
// Re-registering an existing key id is rejected: silently replacing trust
// anchors is how rotations go wrong.
func (s *Store) Add(keyID string, pub ed25519.PublicKey) error {
	if keyID == "" {
		return &entities.KeyError{Reason: "key id cannot be empty"}
	}
	if len(pub) != ed25519.PublicKeySize {
		return &entities.KeyError{KeyID: keyID, Reason: "public key has wrong size for Ed25519"}
	}
	if _, exists := s.keys[keyID]; exists {
		return &entities.KeyError{KeyID: keyID, Reason: "key id already registered"}
	}
	s.keys[keyID] = pub
	return nil
}

// Lookup returns the public key for a key id.
func (s *Store) Lookup(keyID string) (ed25519.PublicKey, bool) {
	pub, ok := s.keys[keyID]
	return pub, ok
}

// KeyIDs returns the registered key ids in sorted order.
func (s *Store) KeyIDs() []string {
	ids := make([]string, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered keys.
func (s *Store) Len() int {
	return len(s.keys)
}

// storeFile is the on-disk trust bundle format.
type storeFile struct {
	Keys map[string]string `yaml:"keys"`
}

// LoadStore reads a YAML trust bundle mapping key ids to base64 public
// keys:
//
//	keys:
//	  key_2025_01: "base64..."
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read trust store: %w", err)
	}

	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse trust store: %w", err)
	}
	if len(file.Keys) == 0 {
		return nil, &entities.KeyError{Reason: "trust store contains no keys"}
	}

	return NewStoreFromBase64(file.Keys)
}

// SaveStore writes the store as a YAML trust bundle.
func SaveStore(path string, s *Store) error {
	keys := make(map[string]string, len(s.keys))
	for id, pub := range s.keys {
		keys[id] = base64.StdEncoding.EncodeToString(pub)
	}

	data, err := yaml.Marshal(storeFile{Keys: keys})
	if err != nil {
		return fmt.Errorf("marshal trust store: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return fmt.Errorf("write trust store: %w", err)
	}
	return nil
}
