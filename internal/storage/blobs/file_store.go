package blobs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/interfaces"
)

// extByMime maps the image MIME types the downloader produces to file
// extensions. Anything unknown falls back to .bin.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileStore is a content-addressed blob store on the local filesystem.
// Blobs are named by the SHA-256 of their content and fanned out into
// two-character prefix directories, so re-downloading an identical
// image is a no-op and references are stable across runs.
type FileStore struct {
	baseDir string
	logger  arbor.ILogger
}

// NewFileStore creates the base directory if needed and returns the
// store.
func NewFileStore(baseDir string, logger arbor.ILogger) (interfaces.BlobStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, logger: logger}, nil
}

// Store writes the bytes and returns a reference of the form
// "ab/abcdef....jpg" relative to the base directory.
func (s *FileStore) Store(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty blob")
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:])
	ext, ok := extByMime[mimeType]
	if !ok {
		ext = ".bin"
	}
	ref := filepath.Join(name[:2], name+ext)

	path := filepath.Join(s.baseDir, ref)
	if _, err := os.Stat(path); err == nil {
		// Identical content already stored
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob prefix directory: %w", err)
	}

	// Write via temp file then rename so readers never see a partial blob
	tmp, err := os.CreateTemp(filepath.Dir(path), ".blob-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}

	s.logger.Debug().Str("ref", ref).Int("bytes", len(data)).Msg("Stored blob")
	return ref, nil
}

// Open returns the bytes for a reference.
func (s *FileStore) Open(ref string) ([]byte, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *FileStore) Delete(ref string) error {
	path, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", ref, err)
	}
	return nil
}

// Path validates the reference and returns the absolute filesystem
// path backing it. References are relative and must stay inside the
// base directory.
func (s *FileStore) Path(ref string) (string, error) {
	if ref == "" || strings.Contains(ref, "..") || filepath.IsAbs(ref) {
		return "", fmt.Errorf("invalid blob reference: %q", ref)
	}
	return filepath.Join(s.baseDir, ref), nil
}
