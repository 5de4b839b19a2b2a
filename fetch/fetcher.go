// Package fetch downloads manifest artifacts and gates what is kept.
// It must only be used with a manifest that already passed
// manifest-level verification: the fetcher enforces the per-artifact
// integrity contract, never the signature.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
	"github.com/modeldist-dev/modeldist-sdk/manifest/verify"
)

// Fetcher downloads artifacts declared by a verified manifest entry.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*fetcherConfig)

type fetcherConfig struct {
	logger         *slog.Logger
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	timeout        time.Duration
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(c *fetcherConfig) { c.logger = l }
}

// WithMaxRetries sets the retry budget for transient HTTP failures.
func WithMaxRetries(n int) FetcherOption {
	return func(c *fetcherConfig) { c.maxRetries = n }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(c *fetcherConfig) { c.timeout = d }
}

// NewFetcher creates an artifact fetcher with retrying transport.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	cfg := &fetcherConfig{
		logger:         slog.Default(),
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.timeout,
			Transport: &retryTransport{
				logger:         cfg.logger,
				maxRetries:     cfg.maxRetries,
				initialBackoff: cfg.initialBackoff,
				maxBackoff:     cfg.maxBackoff,
			},
		},
		logger: cfg.logger,
	}
}

// FetchArtifact downloads one artifact of a model entry into destDir.
//
// The download is written to a temporary file, capped at the declared
// size, and hashed while streaming. It is renamed into place only if both
// the size and the SHA-256 digest match the descriptor; on any mismatch
// the temporary file is removed and an *entities.IntegrityError is
// returned. A failed artifact is never partially kept.
func (f *Fetcher) FetchArtifact(ctx context.Context, entry entities.ModelEntry, filename, destDir string) (string, error) {
	desc, ok := entry.Files[filename]
	if !ok {
		return "", &entities.StructuralError{
			Field:  "files",
			Reason: fmt.Sprintf("entry %s declares no artifact %s", entry.ID, filename),
		}
	}

	artifactURL, err := url.JoinPath(entry.BaseURL, filename)
	if err != nil {
		return "", fmt.Errorf("build artifact url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return "", fmt.Errorf("build artifact request: %w", err)
	}

	f.logger.Info("fetching artifact",
		"model", entry.ID,
		"file", filename,
		"url", safeURL(artifactURL),
		"size", desc.Size)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch artifact %s: %w", filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch artifact %s: unexpected status %d", filename, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(destDir, filename+".part-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	// Cap at one byte past the declared size: an oversized body then
	// fails the size comparison instead of filling the disk.
	body := io.LimitReader(resp.Body, desc.Size+1)
	verifyErr := verify.VerifyArtifact(filename, desc, io.TeeReader(body, tmp))

	if closeErr := tmp.Close(); verifyErr == nil && closeErr != nil {
		verifyErr = fmt.Errorf("finalize artifact %s: %w", filename, closeErr)
	}
	if verifyErr != nil {
		os.Remove(tmp.Name())
		return "", verifyErr
	}

	finalPath := filepath.Join(destDir, filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("install artifact %s: %w", filename, err)
	}

	return finalPath, nil
}

// FetchModel downloads every artifact of the entry into destDir.
// Integrity failures are reported per artifact so the caller can retry
// just the failed files; successfully verified artifacts stay installed.
func (f *Fetcher) FetchModel(ctx context.Context, entry entities.ModelEntry, destDir string) (map[string]string, error) {
	paths := make(map[string]string, len(entry.Files))
	var firstErr error
	for _, filename := range sortedFilenames(entry.Files) {
		path, err := f.FetchArtifact(ctx, entry, filename, destDir)
		if err != nil {
			f.logger.Error("artifact rejected",
				"model", entry.ID, "file", filename, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths[filename] = path
	}
	return paths, firstErr
}

// SyncModel brings destDir up to date with the entry, consulting the
// install ledger. When the ledger already pins the entry's descriptors
// and every installed file is present with the declared size, nothing is
// downloaded. After a successful fetch the ledger is updated in place;
// persisting it is the caller's job.
func (f *Fetcher) SyncModel(ctx context.Context, entry entities.ModelEntry, destDir, keyID string, ledger *Ledger) (map[string]string, error) {
	if ledger != nil && ledger.Current(entry) && f.installed(entry, destDir) {
		f.logger.Info("model up to date", "id", entry.ID)
		paths := make(map[string]string, len(entry.Files))
		for name := range entry.Files {
			paths[name] = filepath.Join(destDir, name)
		}
		return paths, nil
	}

	paths, err := f.FetchModel(ctx, entry, destDir)
	if err != nil {
		return paths, err
	}
	if ledger != nil {
		ledger.Record(entry, keyID, time.Now())
	}
	return paths, nil
}

// installed reports whether every declared artifact exists in destDir
// with its declared size.
func (f *Fetcher) installed(entry entities.ModelEntry, destDir string) bool {
	for name, desc := range entry.Files {
		info, err := os.Stat(filepath.Join(destDir, name))
		if err != nil || info.Size() != desc.Size {
			return false
		}
	}
	return true
}

func sortedFilenames(files map[string]entities.FileDescriptor) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// safeURL removes user:password@ from a URL for safe logging.
// Returns the original string if the URL cannot be parsed.
func safeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	return parsed.String()
}
