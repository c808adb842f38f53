// Package models defines the records the storage engine persists. The engine
// itself treats records as opaque serializable blobs with an identifier; the
// concrete types here are what the extraction pipeline produces.
package models

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeItem is one structured knowledge record.
type KnowledgeItem struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title,omitempty"`
	Abstract   string                 `json:"abstract,omitempty"`
	Content    string                 `json:"content,omitempty"`
	Source     string                 `json:"source,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Categories []string               `json:"categories,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
	CreatedAt  time.Time              `json:"created_at,omitempty"`
}

// NewKnowledgeItem creates a knowledge item with a generated ID.
func NewKnowledgeItem(title string) *KnowledgeItem {
	return &KnowledgeItem{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

// PrimaryID returns the stable identifier for this item, generating one if
// the producer did not set any.
func (k *KnowledgeItem) PrimaryID() string {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return k.ID
}
