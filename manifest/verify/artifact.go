package verify

import (
	"bytes"
	"io"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

// VerifyArtifact streams an artifact's content and checks it against the
// manifest descriptor. Only call this after manifest-level Verify has
// returned Valid: the descriptor's values are untrusted until then.
//
// A mismatch returns an *entities.IntegrityError scoped to this artifact;
// the caller must discard the content and must not install it. Other
// artifacts in the same verified manifest remain trustable.
func VerifyArtifact(filename string, desc entities.FileDescriptor, r io.Reader) error {
	expected, err := desc.Digest()
	if err != nil {
		return err
	}

	actual, size, err := values.ComputeDigestReader(r)
	if err != nil {
		return err
	}

	if size != desc.Size || !actual.Equals(expected) {
		return &entities.IntegrityError{
			Filename:       filename,
			ExpectedDigest: expected,
			ActualDigest:   actual,
			ExpectedSize:   desc.Size,
			ActualSize:     size,
		}
	}
	return nil
}

// VerifyArtifactBytes checks in-memory content against a descriptor.
func VerifyArtifactBytes(filename string, desc entities.FileDescriptor, data []byte) error {
	return VerifyArtifact(filename, desc, bytes.NewReader(data))
}
