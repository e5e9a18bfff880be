// Package file implements ports.ArtifactStore on the local filesystem.
package file

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/regtrain/pkg/domain"
)

// DefaultRoot mirrors the layout other tracking tools use for local artifacts.
const DefaultRoot = "mlruns"

// Store implements ports.ArtifactStore using the local filesystem.
// Artifacts live at <BasePath>/<experiment>/<run>/artifacts/<path>.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "mlruns".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultRoot
	}
	return &Store{BasePath: basePath}
}

func (s *Store) resolve(experimentID, runID, path string) (string, error) {
	if experimentID == "" || runID == "" {
		return "", fmt.Errorf("experimentID and runID cannot be empty")
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if path == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid artifact path %q", path)
	}
	return filepath.Join(s.BasePath, experimentID, runID, "artifacts", clean), nil
}

// Put writes the artifact atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, experimentID, runID, path string, data []byte) (domain.Artifact, error) {
	destPath, err := s.resolve(experimentID, runID, path)
	if err != nil {
		return domain.Artifact{}, err
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to ensure artifact directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-*-"+filepath.Base(destPath))
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return domain.Artifact{}, fmt.Errorf("failed to remove existing artifact for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to rename temp file to artifact: %w", err)
	}

	abs, err := filepath.Abs(destPath)
	if err != nil {
		abs = destPath
	}
	uri := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	return domain.Artifact{
		Path: filepath.ToSlash(filepath.Clean(filepath.FromSlash(path))),
		URI:  uri.String(),
		Size: int64(len(data)),
	}, nil
}

// Get reads an artifact back.
func (s *Store) Get(ctx context.Context, experimentID, runID, path string) ([]byte, error) {
	p, err := s.resolve(experimentID, runID, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}
