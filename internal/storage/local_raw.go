package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultRawExtension is used when content is stored without one.
const defaultRawExtension = ".bin"

// StoreRawFile writes an opaque blob under the raw_files category,
// preserving the extension. An empty extension defaults to .bin. Returns the
// base-relative path of the stored file.
func (s *Local) StoreRawFile(id string, content []byte, extension string) (string, error) {
	ext := normalizeExt(extension)
	if ext == "" {
		ext = defaultRawExtension
	}
	return s.raw.store(id, content, ext)
}

// StoreRawFileFrom stores a raw file by copying an existing file, keeping
// its extension.
func (s *Local) StoreRawFileFrom(id, sourcePath string) (string, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", wrapErr("store", s.raw.name, fmt.Errorf("source file %s: %w", sourcePath, err))
	}
	ext := normalizeExt(filepath.Ext(sourcePath))
	if ext == "" {
		ext = defaultRawExtension
	}
	return s.raw.store(id, content, ext)
}

// GetRawFile returns the stored bytes for id, or nil when absent.
func (s *Local) GetRawFile(id string) ([]byte, error) {
	return s.raw.read(id)
}

// GetRawFilePath resolves id to an absolute file path without reading the
// payload. Returns ErrNotFound when the item does not exist.
func (s *Local) GetRawFilePath(id string) (string, error) {
	abs, err := s.raw.locate(id)
	if err != nil {
		return "", err
	}
	if abs == "" {
		return "", wrapErr("get", s.raw.name, fmt.Errorf("%s: %w", id, ErrNotFound))
	}
	return abs, nil
}

// DeleteRawFile removes the raw file and its index entry.
func (s *Local) DeleteRawFile(id string) (bool, error) {
	return s.raw.delete(id)
}

// ListRawFiles returns all raw file IDs known to the index.
func (s *Local) ListRawFiles() ([]string, error) {
	return s.raw.list(), nil
}
