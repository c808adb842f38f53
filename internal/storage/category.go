package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"quantmind/internal/config"
	"quantmind/internal/logging"
)

// categoryStore provides read/write/delete over one category root, backed by
// an index table. The index is the source of truth for identity→location;
// the filesystem stays the source of truth for existence, so every read
// verifies the file lazily and heals the index when the two diverge.
//
// Mutators take the exclusive lock, readers the shared lock, scoped to the
// table access; payload I/O for reads happens outside the lock.
type categoryStore struct {
	mu      sync.RWMutex
	name    string
	dir     string
	baseDir string
	index   *indexTable
}

// newCategoryStore loads the category's index, rebuilding it from a
// directory scan when missing or corrupt. It fails only when the category
// root itself is unreadable.
func newCategoryStore(layout *config.Layout, name string) (*categoryStore, error) {
	c := &categoryStore{
		name:    name,
		dir:     layout.CategoryDir(name),
		baseDir: layout.BaseDir,
		index:   newIndexTable(layout, name),
	}
	if !c.index.load() {
		if err := c.index.rebuild(); err != nil {
			return nil, wrapErr("init", name, err)
		}
	}
	return c, nil
}

// store writes payload to <root>/<id><ext> and updates the index. Overwrites
// are allowed; re-storing under a different extension drops the old file so
// a later rebuild cannot resurrect it. Returns the base-relative path.
func (c *categoryStore) store(id string, payload []byte, ext string) (string, error) {
	if id == "" {
		return "", wrapErr("store", c.name, ErrEmptyID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := id + ext
	rel := filepath.Join(c.name, name)

	if prev, ok := c.index.get(id); ok && prev.Path != rel {
		_ = os.Remove(filepath.Join(c.baseDir, prev.Path))
	}

	if err := os.WriteFile(filepath.Join(c.dir, name), payload, 0644); err != nil {
		return "", wrapErr("store", c.name, err)
	}
	if err := c.index.put(id, indexEntry{Path: rel, Extension: ext}); err != nil {
		return "", wrapErr("store", c.name, err)
	}

	logging.StorageDebug("stored %s/%s (%d bytes)", c.name, id, len(payload))
	return rel, nil
}

// locate resolves an ID to an absolute file path, or "" when the item does
// not exist. The fast path trusts the index; a stale entry is evicted and
// the bounded scan path takes over, re-indexing anything it discovers.
func (c *categoryStore) locate(id string) (string, error) {
	if id == "" {
		return "", nil
	}

	c.mu.RLock()
	e, ok := c.index.get(id)
	c.mu.RUnlock()
	if ok {
		abs := filepath.Join(c.baseDir, e.Path)
		if fileExists(abs) {
			return abs, nil
		}
		logging.Get(logging.CategoryStorage).Info("%s/%s in index but missing on disk, evicting stale entry", c.name, id)
		c.mu.Lock()
		if cur, still := c.index.get(id); still && cur == e {
			if err := c.index.remove(id); err != nil {
				logging.Get(logging.CategoryIndex).Warn("failed to persist %s index after evicting %s: %v", c.name, id, err)
			}
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have healed the entry while we waited.
	if e, ok := c.index.get(id); ok {
		abs := filepath.Join(c.baseDir, e.Path)
		if fileExists(abs) {
			return abs, nil
		}
	}

	match, err := c.scanLocked(id)
	if err != nil {
		return "", wrapErr("get", c.name, err)
	}
	if match == "" {
		return "", nil
	}

	// Self-heal by discovery. The read still succeeds if the persist fails;
	// the next mutation will surface any real disk problem.
	rel := filepath.Join(c.name, filepath.Base(match))
	if err := c.index.put(id, indexEntry{Path: rel, Extension: filepath.Ext(match)}); err != nil {
		logging.Get(logging.CategoryIndex).Warn("failed to re-index discovered %s/%s: %v", c.name, id, err)
	} else {
		logging.Storage("re-indexed %s/%s discovered by scan", c.name, id)
	}
	return match, nil
}

// read returns the payload for an ID, or nil when the item does not exist.
func (c *categoryStore) read(id string) ([]byte, error) {
	abs, err := c.locate(id)
	if err != nil || abs == "" {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Deleted between locate and read; the next lookup heals it.
			return nil, nil
		}
		return nil, wrapErr("get", c.name, err)
	}
	return data, nil
}

// delete removes the file (if present) and the index entry. Deleting an
// unknown ID is not an error; the return reports whether anything went away.
func (c *categoryStore) delete(id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.index.get(id); ok {
		removed := false
		if err := os.Remove(filepath.Join(c.baseDir, e.Path)); err == nil {
			removed = true
		} else if !os.IsNotExist(err) {
			return false, wrapErr("delete", c.name, err)
		}
		if err := c.index.remove(id); err != nil {
			return removed, wrapErr("delete", c.name, err)
		}
		logging.StorageDebug("deleted %s/%s", c.name, id)
		return removed, nil
	}

	// Not indexed; a stray file from out-of-band writes still counts.
	match, err := c.scanLocked(id)
	if err != nil {
		return false, wrapErr("delete", c.name, err)
	}
	if match == "" {
		return false, nil
	}
	if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
		return false, wrapErr("delete", c.name, err)
	}
	logging.StorageDebug("deleted unindexed %s/%s", c.name, id)
	return true, nil
}

// list returns all IDs currently known to the index, sorted.
func (c *categoryStore) list() []string {
	c.mu.RLock()
	ids := c.index.ids()
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (c *categoryStore) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index.len()
}

// rebuild forces the O(n) scan-and-reconstruct path.
func (c *categoryStore) rebuild() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.index.rebuild(); err != nil {
		return wrapErr("rebuild", c.name, err)
	}
	return nil
}

// evictMissing drops the index entry for id when its file is gone. Used by
// the tamper watcher; reports whether an entry was evicted.
func (c *categoryStore) evictMissing(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index.get(id)
	if !ok {
		return false
	}
	if fileExists(filepath.Join(c.baseDir, e.Path)) {
		return false
	}
	if err := c.index.remove(id); err != nil {
		logging.Get(logging.CategoryIndex).Warn("failed to persist %s index after tamper eviction of %s: %v", c.name, id, err)
		return false
	}
	return true
}

// scanLocked walks the category root for a file whose stem matches id.
// Caller holds the exclusive lock.
func (c *categoryStore) scanLocked(id string) (string, error) {
	des, err := os.ReadDir(c.dir)
	if err != nil {
		return "", err
	}
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		if stem, _ := splitStem(de.Name()); stem == id {
			return filepath.Join(c.dir, de.Name()), nil
		}
	}
	return "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
