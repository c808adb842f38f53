package models

import "time"

// Embedding is a stored vector for one knowledge item under one embedding
// model. Multiple models may embed the same item; each variant is stored
// separately.
type Embedding struct {
	KnowledgeID string    `json:"knowledge_id"`
	Model       string    `json:"model"`
	Vector      []float64 `json:"embedding"`
	CreatedAt   time.Time `json:"created_at"`
}
