package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quantmind/internal/config"
	"quantmind/internal/logging"
)

// The extra category holds operational metadata as plain JSON files and is
// deliberately outside the indexed CRUD contract: the index files themselves
// live here, so extra keys that would shadow them are rejected.

func reservedExtraKey(key string) bool {
	for _, cat := range []string{config.RawFilesDirName, config.KnowledgesDirName, config.EmbeddingsDirName} {
		if key == cat+"_index" {
			return true
		}
	}
	return false
}

func (s *Local) extraPath(key string) string {
	return filepath.Join(s.layout.ExtraDir(), key+".json")
}

// StoreExtra stores an operational metadata blob (hashes, cursors, etc.)
// under extra/<key>.json.
func (s *Local) StoreExtra(key string, data interface{}) error {
	if key == "" {
		return wrapErr("store", config.ExtraDirName, ErrEmptyID)
	}
	if reservedExtraKey(key) {
		return wrapErr("store", config.ExtraDirName, fmt.Errorf("%s: %w", key, ErrReservedKey))
	}

	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return wrapErr("store", config.ExtraDirName, fmt.Errorf("serialize %s: %w", key, err))
	}
	if err := os.WriteFile(s.extraPath(key), blob, 0644); err != nil {
		return wrapErr("store", config.ExtraDirName, err)
	}
	logging.StorageDebug("stored extra/%s", key)
	return nil
}

// GetExtra decodes the blob stored under key into out. Reports whether the
// key existed.
func (s *Local) GetExtra(key string, out interface{}) (bool, error) {
	blob, err := os.ReadFile(s.extraPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wrapErr("get", config.ExtraDirName, err)
	}
	if err := json.Unmarshal(blob, out); err != nil {
		return false, wrapErr("get", config.ExtraDirName, fmt.Errorf("decode %s: %w", key, err))
	}
	return true, nil
}

// DeleteExtra removes the blob stored under key.
func (s *Local) DeleteExtra(key string) (bool, error) {
	if reservedExtraKey(key) {
		return false, wrapErr("delete", config.ExtraDirName, fmt.Errorf("%s: %w", key, ErrReservedKey))
	}
	if err := os.Remove(s.extraPath(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, wrapErr("delete", config.ExtraDirName, err)
	}
	logging.StorageDebug("deleted extra/%s", key)
	return true, nil
}
