package values

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// hexDigestLen is the length of a hex-encoded SHA-256 digest.
const hexDigestLen = 64

// Digest represents a SHA-256 content hash as it appears in a manifest:
// a 64-character lowercase hex string.
type Digest struct {
	value string
}

// NewDigest creates a digest from a hex value.
func NewDigest(hexValue string) (Digest, error) {
	if len(hexValue) != hexDigestLen {
		return Digest{}, fmt.Errorf("invalid sha256 digest length: got %d, want %d", len(hexValue), hexDigestLen)
	}
	for _, ch := range hexValue {
		if !isLowerHex(ch) {
			return Digest{}, fmt.Errorf("invalid sha256 digest %q: must be lowercase hex", hexValue)
		}
	}
	return Digest{value: hexValue}, nil
}

func isLowerHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// String returns the hex-encoded hash value.
func (d Digest) String() string {
	return d.value
}

// IsEmpty returns true if this is the zero value.
func (d Digest) IsEmpty() bool {
	return d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d.value == other.value
}

// Verify validates data matches this digest.
func (d Digest) Verify(data []byte) error {
	computed := ComputeDigest(data)
	if !d.Equals(computed) {
		return fmt.Errorf("digest mismatch: expected %s, got %s", d.value, computed.value)
	}
	return nil
}

// ComputeDigest computes the SHA-256 digest of data.
func ComputeDigest(data []byte) Digest {
	hash := sha256.Sum256(data)
	return Digest{value: hex.EncodeToString(hash[:])}
}

// ComputeDigestReader computes the SHA-256 digest of reader contents,
// returning the digest and the number of bytes read. Content is streamed,
// never buffered whole.
func ComputeDigestReader(r io.Reader) (Digest, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, n, err
	}
	return Digest{value: hex.EncodeToString(h.Sum(nil))}, n, nil
}
