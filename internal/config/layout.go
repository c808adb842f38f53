package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Directory names under the storage base dir. The layout is a contract with
// everything that reads the store from outside (sync tools, shell users), so
// these names never change.
const (
	RawFilesDirName   = "raw_files"
	KnowledgesDirName = "knowledges"
	EmbeddingsDirName = "embeddings"
	ExtraDirName      = "extra"
)

// Layout owns the on-disk directory convention for one storage base dir.
type Layout struct {
	BaseDir string
}

// NewLayout resolves base to an absolute path and ensures the category
// directories exist. Creation is idempotent and safe to call on every
// startup.
func NewLayout(base string) (*Layout, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir %s: %w", base, err)
	}

	l := &Layout{BaseDir: abs}
	for _, d := range []string{
		abs,
		l.RawFilesDir(),
		l.KnowledgesDir(),
		l.EmbeddingsDir(),
		l.ExtraDir(),
	} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to init dir %s: %w", d, err)
		}
	}
	return l, nil
}

// RawFilesDir is where opaque artifact blobs (PDFs, etc.) live.
func (l *Layout) RawFilesDir() string {
	return filepath.Join(l.BaseDir, RawFilesDirName)
}

// KnowledgesDir is where knowledge records live, one JSON file per item.
func (l *Layout) KnowledgesDir() string {
	return filepath.Join(l.BaseDir, KnowledgesDirName)
}

// EmbeddingsDir is where serialized vectors live.
func (l *Layout) EmbeddingsDir() string {
	return filepath.Join(l.BaseDir, EmbeddingsDirName)
}

// ExtraDir is reserved for index files and operational metadata.
func (l *Layout) ExtraDir() string {
	return filepath.Join(l.BaseDir, ExtraDirName)
}

// CategoryDir maps a category directory name to its absolute path.
func (l *Layout) CategoryDir(name string) string {
	return filepath.Join(l.BaseDir, name)
}

// IndexPath returns the index file path for a category, kept under extra/.
func (l *Layout) IndexPath(category string) string {
	return filepath.Join(l.ExtraDir(), category+"_index.json")
}
