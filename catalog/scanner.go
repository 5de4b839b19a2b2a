// Package catalog implements the producer workflow: discover model
// folders, recompute every artifact's size and digest, and rebuild the
// manifest in full. Nothing here is incremental; stale hash values are
// never trusted across runs.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/values"
)

// Folder is a discovered model folder: its id (the folder name) and path.
type Folder struct {
	ID   values.ModelID
	Path string
}

// Scanner discovers model folders under a catalog root. A folder
// qualifies only if it carries every required artifact file for the
// current schema version.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScannerLogger sets the logger.
func WithScannerLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner creates a scanner over the given catalog root.
func NewScanner(root string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns the qualifying model folders sorted by id.
func (s *Scanner) Scan(ctx context.Context) ([]Folder, error) {
	required, err := entities.RequiredFiles(entities.SchemaVersion)
	if err != nil {
		return nil, err
	}

	// Candidate folders are those holding the first required file;
	// the remaining required files are checked per candidate.
	matches, err := doublestar.FilepathGlob(filepath.Join(s.root, "*", required[0]))
	if err != nil {
		return nil, fmt.Errorf("scan catalog root: %w", err)
	}

	var folders []Folder
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Dir(match)
		id, err := values.NewModelID(filepath.Base(dir))
		if err != nil {
			s.logger.Warn("skipping folder with invalid model id",
				"folder", dir, "error", err)
			continue
		}

		complete := true
		for _, name := range required[1:] {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				s.logger.Warn("skipping incomplete model folder",
					"folder", dir, "missing", name)
				complete = false
				break
			}
		}
		if complete {
			folders = append(folders, Folder{ID: id, Path: dir})
		}
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].ID.String() < folders[j].ID.String()
	})
	return folders, nil
}

// DescribeFiles recomputes size and digest for every required artifact in
// the folder. Files are hashed concurrently; content is streamed, never
// loaded whole.
func (s *Scanner) DescribeFiles(ctx context.Context, folder Folder) (map[string]entities.FileDescriptor, error) {
	required, err := entities.RequiredFiles(entities.SchemaVersion)
	if err != nil {
		return nil, err
	}

	descriptors := make([]entities.FileDescriptor, len(required))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range required {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f, err := os.Open(filepath.Clean(filepath.Join(folder.Path, name)))
			if err != nil {
				return fmt.Errorf("open artifact %s: %w", name, err)
			}
			defer f.Close()

			digest, size, err := values.ComputeDigestReader(f)
			if err != nil {
				return fmt.Errorf("hash artifact %s: %w", name, err)
			}
			descriptors[i] = entities.FileDescriptor{Size: size, SHA256: digest.String()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make(map[string]entities.FileDescriptor, len(required))
	for i, name := range required {
		files[name] = descriptors[i]
	}
	return files, nil
}
