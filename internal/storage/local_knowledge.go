package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"quantmind/internal/logging"
	"quantmind/internal/models"
)

const knowledgeExtension = ".json"

// StoreKnowledge serializes a knowledge record and stores it under the
// knowledges category, keyed by its primary ID. Returns the ID.
func (s *Local) StoreKnowledge(rec Record) (string, error) {
	if rec == nil {
		return "", wrapErr("store", s.knowledges.name, fmt.Errorf("nil record"))
	}
	id := rec.PrimaryID()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", wrapErr("store", s.knowledges.name, fmt.Errorf("serialize %s: %w", id, err))
	}
	if _, err := s.knowledges.store(id, data, knowledgeExtension); err != nil {
		return "", err
	}
	return id, nil
}

// GetKnowledge returns the knowledge record for id decoded into its common
// shape, or nil when absent. Callers that need producer-specific fields
// (papers, for instance) use GetKnowledgeRaw.
func (s *Local) GetKnowledge(id string) (*models.KnowledgeItem, error) {
	data, err := s.knowledges.read(id)
	if err != nil || data == nil {
		return nil, err
	}

	var item models.KnowledgeItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, wrapErr("get", s.knowledges.name, fmt.Errorf("decode %s: %w", id, err))
	}
	return &item, nil
}

// GetKnowledgeRaw returns the stored serialized form of a knowledge record,
// or nil when absent.
func (s *Local) GetKnowledgeRaw(id string) ([]byte, error) {
	return s.knowledges.read(id)
}

// GetKnowledgePath resolves a knowledge ID to its absolute file path.
// Returns ErrNotFound when the item does not exist.
func (s *Local) GetKnowledgePath(id string) (string, error) {
	abs, err := s.knowledges.locate(id)
	if err != nil {
		return "", err
	}
	if abs == "" {
		return "", wrapErr("get", s.knowledges.name, fmt.Errorf("%s: %w", id, ErrNotFound))
	}
	return abs, nil
}

// DeleteKnowledge removes a knowledge record and its index entry.
func (s *Local) DeleteKnowledge(id string) (bool, error) {
	return s.knowledges.delete(id)
}

// ListKnowledges returns all knowledge IDs known to the index.
func (s *Local) ListKnowledges() ([]string, error) {
	return s.knowledges.list(), nil
}

// GetAllKnowledges loads every stored knowledge record. Records that vanish
// between listing and reading are skipped; the read path has already healed
// their index entries.
func (s *Local) GetAllKnowledges() ([]*models.KnowledgeItem, error) {
	ids := s.knowledges.list()
	items := make([]*models.KnowledgeItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetKnowledge(id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, item)
		}
	}
	return items, nil
}

// KnowledgeExists reports whether a knowledge record is stored for id.
func (s *Local) KnowledgeExists(id string) bool {
	abs, err := s.knowledges.locate(id)
	return err == nil && abs != ""
}

// ProcessKnowledge stores a knowledge record and, when the record carries an
// external fetch reference whose artifact is not already stored, fetches and
// stores the raw artifact. The two persists succeed or fail independently: a
// fetch or raw-store failure is logged and leaves the already-committed
// knowledge record in place, so the artifact can be backfilled later.
//
// The fetch runs outside every category lock, bounded by the configured
// download timeout on top of ctx.
func (s *Local) ProcessKnowledge(ctx context.Context, rec Record) (string, error) {
	id, err := s.StoreKnowledge(rec)
	if err != nil {
		return "", err
	}

	f, ok := rec.(Fetchable)
	if !ok {
		return id, nil
	}
	url, ext, ok := f.FetchRef()
	if !ok {
		return id, nil
	}

	if abs, err := s.raw.locate(id); err != nil {
		return id, err
	} else if abs != "" {
		return id, nil
	}

	if s.fetcher == nil {
		logging.Get(logging.CategoryFetch).Debug("no fetcher configured, skipping artifact for %s", id)
		return id, nil
	}

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	logging.Fetch("fetching artifact for %s from %s", id, url)
	content, err := s.fetcher.Fetch(fctx, url)
	if err != nil {
		logging.Get(logging.CategoryFetch).Error("failed to fetch artifact for %s: %v", id, err)
		return id, nil
	}
	if _, err := s.StoreRawFile(id, content, ext); err != nil {
		logging.Get(logging.CategoryStorage).Error("failed to store fetched artifact for %s: %v", id, err)
	}
	return id, nil
}

// ProcessKnowledges processes a batch of records through a bounded worker
// pool. The returned IDs are positionally aligned with recs; on error the
// records already processed remain stored.
func (s *Local) ProcessKnowledges(ctx context.Context, recs []Record) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryStorage, "ProcessKnowledges")
	defer timer.Stop()

	ids := make([]string, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.processWorkers)

	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			id, err := s.ProcessKnowledge(gctx, rec)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}
