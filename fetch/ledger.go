package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// Ledger records which model artifacts a device has installed. It lets a
// sync skip artifacts whose installed descriptors already match the
// manifest, so only changed files are re-downloaded.
//
// The ledger is bookkeeping, not a trust anchor: a matching entry still
// requires the installed file to exist with the declared size.
type Ledger struct {
	Generated time.Time              `yaml:"generated"`
	Models    map[string]ModelRecord `yaml:"models"`
	Version   int                    `yaml:"ledger_version"`
}

// ModelRecord pins what was installed for one model id.
type ModelRecord struct {
	Fetched time.Time                          `yaml:"fetched"`
	KeyID   string                             `yaml:"key_id"`
	Files   map[string]entities.FileDescriptor `yaml:"files"`
}

// NewLedger creates an empty install ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Version:   1,
		Generated: time.Now().UTC(),
		Models:    make(map[string]ModelRecord),
	}
}

// Record stores the installed state of a model. keyID is the trust-store
// key that verified the manifest the entry came from.
func (l *Ledger) Record(entry entities.ModelEntry, keyID string, fetched time.Time) {
	if l.Models == nil {
		l.Models = make(map[string]ModelRecord)
	}
	files := make(map[string]entities.FileDescriptor, len(entry.Files))
	for name, desc := range entry.Files {
		files[name] = desc
	}
	l.Models[entry.ID] = ModelRecord{
		Fetched: fetched.UTC(),
		KeyID:   keyID,
		Files:   files,
	}
	l.Generated = fetched.UTC()
}

// Current reports whether the ledger already holds exactly the
// descriptors the entry declares.
func (l *Ledger) Current(entry entities.ModelEntry) bool {
	record, ok := l.Models[entry.ID]
	if !ok || len(record.Files) != len(entry.Files) {
		return false
	}
	for name, desc := range entry.Files {
		if record.Files[name] != desc {
			return false
		}
	}
	return true
}

// Validate checks ledger invariants.
func (l *Ledger) Validate() error {
	for id, record := range l.Models {
		for name, desc := range record.Files {
			if err := desc.Validate(); err != nil {
				return fmt.Errorf("model %q file %q: %w", id, name, err)
			}
		}
	}
	return nil
}

// LoadLedger reads an install ledger from path. A missing file is not an
// error; it yields nil so the caller starts fresh.
func LoadLedger(path string) (*Ledger, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open install ledger %q: %w", path, err)
	}

	var ledger Ledger
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decoding install ledger: %w", err)
	}
	if err := ledger.Validate(); err != nil {
		return nil, fmt.Errorf("invalid install ledger: %w", err)
	}
	return &ledger, nil
}

// SaveLedger writes the ledger to path, creating parent directories.
func SaveLedger(path string, ledger *Ledger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	data, err := yaml.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encoding install ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write install ledger %q: %w", path, err)
	}
	return nil
}
