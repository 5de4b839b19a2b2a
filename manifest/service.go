// Package manifest ties the protocol together for consumers: schema
// check, parse, then signature verification against an explicit trust
// store. Nothing downstream of this package may touch an artifact until
// LoadVerified has succeeded.
package manifest

import (
	"log/slog"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/schema"
	"github.com/modeldist-dev/modeldist-sdk/manifest/trust"
	"github.com/modeldist-dev/modeldist-sdk/manifest/verify"
	"github.com/modeldist-dev/modeldist-sdk/parser"
)

// Service orchestrates consumer-side manifest handling.
type Service struct {
	store       *trust.Store
	parser      parser.ManifestParser
	logger      *slog.Logger
	schemaCheck bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithParser sets the manifest parser. The JSON schema pre-check only
// applies to the default JSON wire format, so setting a custom parser
// disables it.
func WithParser(p parser.ManifestParser) ServiceOption {
	return func(s *Service) {
		s.parser = p
		s.schemaCheck = false
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a manifest service bound to a trust store.
func NewService(store *trust.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:       store,
		parser:      parser.NewJSONManifestParser(),
		logger:      slog.Default(),
		schemaCheck: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadVerified parses untrusted manifest bytes and verifies the
// signature. The manifest is returned only when verification succeeds;
// any other outcome yields the verification result and an error, and the
// caller must not fetch or trust anything the document describes.
func (s *Service) LoadVerified(data []byte) (*entities.Manifest, verify.Result, error) {
	if s.schemaCheck {
		if err := schema.Validate(data); err != nil {
			return nil, verify.Result{}, err
		}
	}

	m, err := s.parser.Parse(data)
	if err != nil {
		return nil, verify.Result{}, err
	}

	result, err := verify.Verify(m, s.store)
	if err != nil {
		return nil, verify.Result{}, err
	}
	if !result.Valid() {
		s.logger.Error("manifest rejected",
			"status", string(result.Status),
			"key_id", result.KeyID)
		return nil, result, result.Err
	}

	s.logger.Info("manifest verified",
		"key_id", result.KeyID,
		"models", len(m.Models),
		"updated_at", m.UpdatedAt)
	return m, result, nil
}
