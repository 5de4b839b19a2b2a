package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

// BuildManifest assembles an unsigned manifest from fully-formed entries.
// It is pure and deterministic: identical inputs produce identical
// manifests. Entries are ordered by id so canonical encoding does not
// depend on discovery order.
func BuildManifest(entries []entities.ModelEntry) (entities.Manifest, error) {
	sorted := make([]entities.ModelEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	m := entities.Manifest{
		Version: entities.SchemaVersion,
		Models:  sorted,
	}
	if err := m.Validate(); err != nil {
		return entities.Manifest{}, err
	}
	return m, nil
}

// Namer decides the display name for a newly discovered model.
type Namer interface {
	Name(id string) (string, error)
}

// Builder rebuilds the full manifest from a catalog on every run.
type Builder struct {
	scanner *Scanner
	baseURL string
	namer   Namer
	logger  *slog.Logger
	now     func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNamer sets the display-name source for new models.
func WithNamer(n Namer) BuilderOption {
	return func(b *Builder) { b.namer = n }
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder. baseURL is the fetch root artifact URLs
// are derived from: base_url = baseURL + "/" + id.
func NewBuilder(scanner *Scanner, baseURL string, opts ...BuilderOption) *Builder {
	b := &Builder{
		scanner: scanner,
		baseURL: baseURL,
		namer:   FolderNamer{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rebuild scans the catalog and produces a fresh unsigned manifest.
//
// Size and digest are recomputed for every file on every run. A previous
// manifest (may be nil) only contributes display names and selector
// versions for entries whose file content is unchanged, never hashes.
func (b *Builder) Rebuild(ctx context.Context, previous *entities.Manifest) (entities.Manifest, error) {
	folders, err := b.scanner.Scan(ctx)
	if err != nil {
		return entities.Manifest{}, err
	}
	if len(folders) == 0 {
		return entities.Manifest{}, fmt.Errorf("no model folders found under catalog root")
	}

	known := make(map[string]entities.ModelEntry)
	if previous != nil {
		for _, entry := range previous.Models {
			known[entry.ID] = entry
		}
	}

	entries := make([]entities.ModelEntry, 0, len(folders))
	for _, folder := range folders {
		files, err := b.scanner.DescribeFiles(ctx, folder)
		if err != nil {
			return entities.Manifest{}, err
		}

		entry := entities.ModelEntry{
			ID:                     folder.ID.String(),
			BaseURL:                b.baseURL + "/" + folder.ID.String(),
			Files:                  files,
			MinimumSelectorVersion: 1,
		}

		if prev, ok := known[entry.ID]; ok {
			entry.Name = prev.Name
			entry.MinimumSelectorVersion = prev.MinimumSelectorVersion
			if filesEqual(prev.Files, files) {
				b.logger.Info("model unchanged", "id", entry.ID)
			} else {
				b.logger.Info("model content changed", "id", entry.ID)
			}
		} else {
			b.logger.Info("new model discovered", "id", entry.ID)
			name, err := b.namer.Name(entry.ID)
			if err != nil {
				return entities.Manifest{}, fmt.Errorf("name model %s: %w", entry.ID, err)
			}
			entry.Name = name
		}

		entries = append(entries, entry)
	}

	m, err := BuildManifest(entries)
	if err != nil {
		return entities.Manifest{}, err
	}
	m.UpdatedAt = b.now().UTC().Format(entities.TimestampFormat)
	return m, nil
}

func filesEqual(a, b map[string]entities.FileDescriptor) bool {
	if len(a) != len(b) {
		return false
	}
	for name, desc := range a {
		if other, ok := b[name]; !ok || other != desc {
			return false
		}
	}
	return true
}
