package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quantmind/internal/config"
	"quantmind/internal/logging"
)

// indexEntry is the persisted location metadata for one stored item.
type indexEntry struct {
	Path      string `json:"path"`
	Extension string `json:"extension,omitempty"`
}

// indexTable maps item IDs to index entries for a single category. It is
// owned by a categoryStore and accessed only under that store's lock; every
// mutation persists synchronously, so the on-disk index never lags a
// completed call. A persist failure rolls the in-memory table back.
type indexTable struct {
	category string // category dir name, also used in relative paths
	baseDir  string
	dir      string // category root on disk
	path     string // index file under extra/
	entries  map[string]indexEntry
}

func newIndexTable(layout *config.Layout, category string) *indexTable {
	return &indexTable{
		category: category,
		baseDir:  layout.BaseDir,
		dir:      layout.CategoryDir(category),
		path:     layout.IndexPath(category),
		entries:  make(map[string]indexEntry),
	}
}

// load reads the persisted index file. It reports false when the file is
// missing or unparsable, in which case the caller must rebuild.
func (t *indexTable) load() bool {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Get(logging.CategoryIndex).Warn("failed to read %s index: %v, rebuilding", t.category, err)
		}
		return false
	}

	entries := make(map[string]indexEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		logging.Get(logging.CategoryIndex).Warn("corrupt %s index: %v, rebuilding", t.category, err)
		return false
	}

	t.entries = entries
	logging.IndexDebug("loaded %s index with %d entries", t.category, len(entries))
	return true
}

// persist writes the table to disk.
func (t *indexTable) persist() error {
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s index: %w", t.category, err)
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s index: %w", t.category, err)
	}
	return nil
}

// rebuild scans the category root exhaustively and reconstructs one entry
// per discovered file, identifier derived from the file name minus its
// extension. This is the O(n) recovery path.
func (t *indexTable) rebuild() error {
	des, err := os.ReadDir(t.dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", t.dir, err)
	}

	fresh := make(map[string]indexEntry, len(des))
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		id, ext := splitStem(de.Name())
		fresh[id] = indexEntry{
			Path:      filepath.Join(t.category, de.Name()),
			Extension: ext,
		}
	}

	t.entries = fresh
	if err := t.persist(); err != nil {
		return err
	}
	logging.Index("rebuilt %s index with %d entries", t.category, len(fresh))
	return nil
}

func (t *indexTable) get(id string) (indexEntry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// put inserts or updates an entry and persists. On persist failure the
// in-memory table is restored so memory and disk never silently diverge.
func (t *indexTable) put(id string, e indexEntry) error {
	prev, had := t.entries[id]
	t.entries[id] = e
	if err := t.persist(); err != nil {
		if had {
			t.entries[id] = prev
		} else {
			delete(t.entries, id)
		}
		return err
	}
	return nil
}

// remove deletes an entry and persists, with the same rollback guarantee as
// put. Removing an unknown ID is a no-op.
func (t *indexTable) remove(id string) error {
	prev, had := t.entries[id]
	if !had {
		return nil
	}
	delete(t.entries, id)
	if err := t.persist(); err != nil {
		t.entries[id] = prev
		return err
	}
	return nil
}

func (t *indexTable) ids() []string {
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	return ids
}

func (t *indexTable) len() int {
	return len(t.entries)
}

// splitStem splits a file name into item ID and extension.
func splitStem(name string) (id, ext string) {
	ext = filepath.Ext(name)
	id = strings.TrimSuffix(name, ext)
	if id == "" {
		return name, ""
	}
	return id, ext
}
