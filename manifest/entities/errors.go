package entities

import (
	"errors"
	"fmt"

	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrStructuralInvalid is returned when a manifest fails schema invariants.
	ErrStructuralInvalid = errors.New("manifest structure invalid")

	// ErrKeyUnavailable is returned when key material is missing, corrupt, or untrusted.
	ErrKeyUnavailable = errors.New("key material unavailable")

	// ErrSignatureInvalid is returned when cryptographic signature verification fails.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrIntegrityCheckFailed is returned when artifact digest or size verification fails.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrModelNotFound is returned when a manifest has no entry for a model id.
	ErrModelNotFound = errors.New("model not found")
)

// StructuralError indicates a manifest that violates schema invariants.
// Structural errors are rejected before any cryptographic operation runs.
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("manifest structure invalid: %s", e.Reason)
	}
	return fmt.Sprintf("manifest structure invalid: %s: %s", e.Field, e.Reason)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrStructuralInvalid)
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructuralInvalid
}

// KeyError indicates missing, corrupt, or untrusted key material.
// There is never a fallback to unsigned trust.
type KeyError struct {
	KeyID  string
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	if e.KeyID == "" {
		return fmt.Sprintf("key error: %s", e.Reason)
	}
	return fmt.Sprintf("key error: %s: %s", e.KeyID, e.Reason)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
func (e *KeyError) Is(target error) bool {
	return target == ErrKeyUnavailable
}

// SignatureError indicates a manifest whose signature does not verify.
// The whole manifest is untrusted; no entry within it may be selectively trusted.
type SignatureError struct {
	KeyID string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature verification failed for key %q", e.KeyID)
}

// Is implements error matching for errors.Is() checks.
func (e *SignatureError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// IntegrityError indicates a single artifact whose content does not match
// its manifest descriptor. It is scoped to that artifact; other artifacts
// in the same verified manifest remain trustable.
type IntegrityError struct {
	Filename       string
	ExpectedDigest values.Digest
	ActualDigest   values.Digest
	ExpectedSize   int64
	ActualSize     int64
}

func (e *IntegrityError) Error() string {
	if e.ExpectedSize != e.ActualSize {
		return fmt.Sprintf(
			"integrity check failed for %s: expected %d bytes, got %d",
			e.Filename, e.ExpectedSize, e.ActualSize,
		)
	}
	return fmt.Sprintf(
		"integrity check failed for %s: expected digest %s, got %s",
		e.Filename, e.ExpectedDigest.String(), e.ActualDigest.String(),
	)
}

// Is implements error matching for errors.Is() checks.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}

// ModelNotFoundError indicates the manifest has no entry for the requested id.
type ModelNotFoundError struct {
	ID values.ModelID
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.ID.String())
}

// Is implements error matching for errors.Is() checks.
func (e *ModelNotFoundError) Is(target error) bool {
	return target == ErrModelNotFound
}
