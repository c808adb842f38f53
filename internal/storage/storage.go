package storage

import (
	"context"

	"quantmind/internal/models"
)

// Record is any knowledge record with a stable identity. The engine treats
// the rest of the record as an opaque serializable blob.
type Record interface {
	PrimaryID() string
}

// Fetchable is a record that references an external raw artifact to be
// fetched and stored alongside it. ProcessKnowledge checks this capability
// explicitly; there is no other type-dependent routing in the engine.
type Fetchable interface {
	Record
	FetchRef() (url, extension string, ok bool)
}

// Fetcher retrieves external artifacts. Implementations must honor context
// cancellation; the engine calls Fetch with a deadline and never while
// holding a category lock.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// BaseStorage is the contract the storage engine exposes to pipeline and
// CLI code. Getters return a zero value, not an error, when the item does
// not exist; deletes are idempotent and report whether anything was removed.
type BaseStorage interface {
	// Raw files
	StoreRawFile(id string, content []byte, extension string) (string, error)
	StoreRawFileFrom(id, sourcePath string) (string, error)
	GetRawFile(id string) ([]byte, error)
	GetRawFilePath(id string) (string, error)
	DeleteRawFile(id string) (bool, error)
	ListRawFiles() ([]string, error)

	// Knowledge records
	StoreKnowledge(rec Record) (string, error)
	GetKnowledge(id string) (*models.KnowledgeItem, error)
	GetKnowledgeRaw(id string) ([]byte, error)
	GetKnowledgePath(id string) (string, error)
	DeleteKnowledge(id string) (bool, error)
	ListKnowledges() ([]string, error)
	GetAllKnowledges() ([]*models.KnowledgeItem, error)
	KnowledgeExists(id string) bool

	// Composite processing
	ProcessKnowledge(ctx context.Context, rec Record) (string, error)
	ProcessKnowledges(ctx context.Context, recs []Record) ([]string, error)

	// Embeddings
	StoreEmbedding(emb *models.Embedding) (string, error)
	GetEmbedding(id, model string) (*models.Embedding, error)
	DeleteEmbedding(id, model string) (bool, error)
	ListEmbeddings() ([]string, error)

	// Extra operational blobs
	StoreExtra(key string, data interface{}) error
	GetExtra(key string, out interface{}) (bool, error)
	DeleteExtra(key string) (bool, error)

	// Maintenance
	RebuildAllIndexes() error
	Info() Info
}

// Info reports storage statistics.
type Info struct {
	BaseDir        string            `json:"base_dir"`
	KnowledgeCount int               `json:"knowledge_count"`
	RawFileCount   int               `json:"raw_file_count"`
	EmbeddingCount int               `json:"embedding_count"`
	IndexFiles     map[string]string `json:"index_files"`
}
