// Package storage implements the on-disk media store. Uploaded assets are
// scoped per owner identity, named to avoid collisions, and served back
// through deterministic public URLs.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// Upload limits enforced before any bytes are persisted.
const (
	MaxFileSize = 5 * 1024 * 1024 // 5 MiB per file
	MaxFiles    = 5               // files per call
)

// Upload is one incoming file of an upload batch.
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// DiskStore saves uploaded files under a base directory, one subdirectory
// per owner scope. Assets are create-once read-many; nothing here deletes.
type DiskStore struct {
	basePath string
	baseURL  string
}

// NewDiskStore creates the base directory if missing.
func NewDiskStore(basePath, baseURL string) (*DiskStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Store writes an upload batch under the owner's scope and returns one public
// URL per file. The whole batch is validated first: if any file violates a
// limit, nothing is stored.
func (s *DiskStore) Store(scope string, files []Upload) ([]string, error) {
	scope, err := safeSegment(scope)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, models.NewValidationError("images", "No files uploaded")
	}
	if len(files) > MaxFiles {
		return nil, fmt.Errorf("%d files in one call (limit %d): %w", len(files), MaxFiles, models.ErrTooManyFiles)
	}
	for _, f := range files {
		if f.Size > MaxFileSize {
			return nil, fmt.Errorf("%s is %d bytes (limit %d): %w", f.Name, f.Size, MaxFileSize, models.ErrPayloadTooLarge)
		}
	}

	// MkdirAll is idempotent, so concurrent first uploads by one owner are safe.
	scopeDir := filepath.Join(s.basePath, scope)
	if err := os.MkdirAll(scopeDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scope dir: %w", err)
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		name := generatedName(f.Name)
		out, err := os.Create(filepath.Join(scopeDir, name))
		if err != nil {
			return nil, fmt.Errorf("create file: %w", err)
		}
		if _, err := io.Copy(out, f.Content); err != nil {
			out.Close()
			return nil, fmt.Errorf("write file: %w", err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("close file: %w", err)
		}
		urls = append(urls, fmt.Sprintf("%s/api/v1/uploads/%s/%s", s.baseURL, scope, name))
	}
	return urls, nil
}

// Resolve maps (scope, name) to the asset's path on disk, or
// models.ErrNotFound when the combination does not exist. Names that would
// escape the scope directory answer not-found as well.
func (s *DiskStore) Resolve(scope, name string) (string, error) {
	safeScope, err := safeSegment(scope)
	if err != nil {
		return "", fmt.Errorf("asset %s/%s: %w", scope, name, models.ErrNotFound)
	}
	safeName, err := safeSegment(name)
	if err != nil {
		return "", fmt.Errorf("asset %s/%s: %w", scope, name, models.ErrNotFound)
	}
	path := filepath.Join(s.basePath, safeScope, safeName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("asset %s/%s: %w", scope, name, models.ErrNotFound)
	}
	return path, nil
}

// generatedName combines an upload timestamp with a random suffix, keeping
// the original extension, so repeated names from one owner never collide.
func generatedName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

// safeSegment rejects path components that could escape the base directory.
func safeSegment(segment string) (string, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" || segment == "." || segment == ".." ||
		strings.ContainsAny(segment, `/\`) || segment != filepath.Base(segment) {
		return "", fmt.Errorf("invalid path segment %q", segment)
	}
	return segment, nil
}
