package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quantmind/internal/models"
)

const embeddingExtension = ".json"

// embeddingKey derives the storage key for one (item, model) embedding
// variant. The model tag is flattened so tags like "org/model:tag" stay
// inside a single file name.
func embeddingKey(id, model string) string {
	return id + "__" + sanitizeModelTag(model)
}

func sanitizeModelTag(model string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, model)
}

// StoreEmbedding stores a vector under the embeddings category, keyed by
// item ID and model tag so multiple embedding variants per item coexist.
// Returns the composite key.
func (s *Local) StoreEmbedding(emb *models.Embedding) (string, error) {
	if emb == nil || emb.KnowledgeID == "" {
		return "", wrapErr("store", s.embeddings.name, ErrEmptyID)
	}
	if emb.Model == "" {
		return "", wrapErr("store", s.embeddings.name, ErrInvalidModel)
	}
	if len(emb.Vector) == 0 {
		return "", wrapErr("store", s.embeddings.name, ErrInvalidVector)
	}
	if emb.CreatedAt.IsZero() {
		emb.CreatedAt = time.Now().UTC()
	}

	key := embeddingKey(emb.KnowledgeID, emb.Model)
	data, err := json.MarshalIndent(emb, "", "  ")
	if err != nil {
		return "", wrapErr("store", s.embeddings.name, fmt.Errorf("serialize %s: %w", key, err))
	}
	if _, err := s.embeddings.store(key, data, embeddingExtension); err != nil {
		return "", err
	}
	return key, nil
}

// GetEmbedding returns the stored vector for one (item, model) pair, or nil
// when absent.
func (s *Local) GetEmbedding(id, model string) (*models.Embedding, error) {
	data, err := s.embeddings.read(embeddingKey(id, model))
	if err != nil || data == nil {
		return nil, err
	}

	var emb models.Embedding
	if err := json.Unmarshal(data, &emb); err != nil {
		return nil, wrapErr("get", s.embeddings.name, fmt.Errorf("decode %s: %w", embeddingKey(id, model), err))
	}
	return &emb, nil
}

// DeleteEmbedding removes one (item, model) embedding variant.
func (s *Local) DeleteEmbedding(id, model string) (bool, error) {
	return s.embeddings.delete(embeddingKey(id, model))
}

// ListEmbeddings returns the composite <id>__<model> keys known to the
// index.
func (s *Local) ListEmbeddings() ([]string, error) {
	return s.embeddings.list(), nil
}

// ListEmbeddingModels returns the model tags with a stored vector for id.
func (s *Local) ListEmbeddingModels(id string) []string {
	prefix := id + "__"
	var tags []string
	for _, key := range s.embeddings.list() {
		if strings.HasPrefix(key, prefix) {
			tags = append(tags, strings.TrimPrefix(key, prefix))
		}
	}
	return tags
}
