package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantmind/internal/config"
)

func newTestCategory(t *testing.T) *categoryStore {
	t.Helper()
	cs, err := newCategoryStore(newTestLayout(t), config.RawFilesDirName)
	require.NoError(t, err)
	return cs
}

func TestCategoryStoreRoundTrip(t *testing.T) {
	cs := newTestCategory(t)

	payload := []byte("%PDF-1.4 minimal")
	rel, err := cs.store("2301.00001", payload, ".pdf")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("raw_files", "2301.00001.pdf"), rel)

	got, err := cs.read("2301.00001")
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.Equal(t, []string{"2301.00001"}, cs.list())
}

func TestCategoryStoreEmptyID(t *testing.T) {
	cs := newTestCategory(t)

	_, err := cs.store("", []byte("x"), ".bin")
	require.ErrorIs(t, err, ErrEmptyID)
}

func TestCategoryStoreGetUnknown(t *testing.T) {
	cs := newTestCategory(t)

	got, err := cs.read("nope")
	require.NoError(t, err, "unknown id is not an error")
	require.Nil(t, got)
}

func TestCategoryStoreOverwriteChangesExtension(t *testing.T) {
	cs := newTestCategory(t)

	_, err := cs.store("item", []byte("old"), ".txt")
	require.NoError(t, err)
	rel, err := cs.store("item", []byte("new"), ".md")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("raw_files", "item.md"), rel)

	// The old file is gone, so a rebuild cannot resurrect it.
	_, err = os.Stat(filepath.Join(cs.dir, "item.txt"))
	require.True(t, os.IsNotExist(err))

	got, err := cs.read("item")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), got)
	require.Equal(t, []string{"item"}, cs.list())
}

func TestCategoryStoreDeleteIdempotent(t *testing.T) {
	cs := newTestCategory(t)

	_, err := cs.store("item", []byte("x"), ".bin")
	require.NoError(t, err)

	removed, err := cs.delete("item")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = cs.delete("item")
	require.NoError(t, err)
	require.False(t, removed, "deleting a missing id reports nothing removed")
	require.Empty(t, cs.list())
}

func TestCategoryStoreSelfHealOnExternalDeletion(t *testing.T) {
	cs := newTestCategory(t)

	_, err := cs.store("item", []byte("x"), ".bin")
	require.NoError(t, err)

	// Tamper: remove the file behind the store's back.
	require.NoError(t, os.Remove(filepath.Join(cs.dir, "item.bin")))

	got, err := cs.read("item")
	require.NoError(t, err)
	require.Nil(t, got, "externally deleted item reads as not found")
	require.Empty(t, cs.list(), "stale entry is evicted from the index")
}

func TestCategoryStoreSelfHealByDiscovery(t *testing.T) {
	cs := newTestCategory(t)

	// Tamper: drop a file in place without telling the store.
	require.NoError(t, os.WriteFile(filepath.Join(cs.dir, "stray.pdf"), []byte("%PDF"), 0644))
	require.Empty(t, cs.list())

	got, err := cs.read("stray")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF"), got)
	require.Equal(t, []string{"stray"}, cs.list(), "discovered file is re-indexed")
}

func TestCategoryStoreDeleteUnindexedStray(t *testing.T) {
	cs := newTestCategory(t)
	require.NoError(t, os.WriteFile(filepath.Join(cs.dir, "stray.pdf"), []byte("%PDF"), 0644))

	removed, err := cs.delete("stray")
	require.NoError(t, err)
	require.True(t, removed)

	_, err = os.Stat(filepath.Join(cs.dir, "stray.pdf"))
	require.True(t, os.IsNotExist(err))
}

func TestCategoryStoreInitRebuildsMissingIndex(t *testing.T) {
	layout := newTestLayout(t)
	cs, err := newCategoryStore(layout, config.RawFilesDirName)
	require.NoError(t, err)
	_, err = cs.store("a", []byte("1"), ".bin")
	require.NoError(t, err)
	_, err = cs.store("b", []byte("2"), ".bin")
	require.NoError(t, err)

	// Kill the index file; a new store over the same layout must rebuild.
	require.NoError(t, os.Remove(layout.IndexPath(config.RawFilesDirName)))

	fresh, err := newCategoryStore(layout, config.RawFilesDirName)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, fresh.list())
}

func TestCategoryStoreInitRebuildsCorruptIndex(t *testing.T) {
	layout := newTestLayout(t)
	cs, err := newCategoryStore(layout, config.RawFilesDirName)
	require.NoError(t, err)
	_, err = cs.store("a", []byte("1"), ".bin")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(layout.IndexPath(config.RawFilesDirName), []byte("][garbage"), 0644))

	fresh, err := newCategoryStore(layout, config.RawFilesDirName)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, fresh.list())
}

func TestCategoryStoreStoreErrorLeavesIndexConsistent(t *testing.T) {
	layout := newTestLayout(t)
	cs, err := newCategoryStore(layout, config.KnowledgesDirName)
	require.NoError(t, err)

	breakIndexPersist(t, layout, config.KnowledgesDirName)

	_, err = cs.store("doomed", []byte("{}"), ".json")
	require.Error(t, err)
	require.Empty(t, cs.list(), "in-memory index must not advance past a failed persist")
}

func TestCategoryStoreConcurrentMutations(t *testing.T) {
	cs := newTestCategory(t)

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cs.store(id, []byte(id), ".bin")
			assert.NoError(t, err)
			got, err := cs.read(id)
			assert.NoError(t, err)
			assert.Equal(t, []byte(id), got)
		}()
	}
	wg.Wait()

	require.Equal(t, ids, cs.list())
}
