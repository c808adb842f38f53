package storage

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"quantmind/internal/config"
	"quantmind/internal/logging"
)

// Local is the file-backed storage engine. It unifies the raw_files,
// knowledges and embeddings category stores behind the BaseStorage contract
// and adds the one piece of category-crossing logic: composite knowledge
// records whose raw artifact is fetched on demand.
type Local struct {
	layout     *config.Layout
	raw        *categoryStore
	knowledges *categoryStore
	embeddings *categoryStore

	fetcher        Fetcher
	fetchTimeout   time.Duration
	processWorkers int

	watcher *TamperWatcher
}

var _ BaseStorage = (*Local)(nil)

// NewLocal creates the engine under cfg.Storage.BaseDir, ensuring the
// directory layout exists and loading (or rebuilding) every category index.
// fetcher may be nil, in which case composite records are stored without
// their raw artifact.
func NewLocal(cfg *config.Config, fetcher Fetcher) (*Local, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "NewLocal")
	defer timer.Stop()

	layout, err := config.NewLayout(cfg.Storage.BaseDir)
	if err != nil {
		return nil, wrapErr("init", "", err)
	}

	s := &Local{
		layout:         layout,
		fetcher:        fetcher,
		fetchTimeout:   cfg.GetDownloadTimeout(),
		processWorkers: cfg.Storage.ProcessWorkers,
	}
	if s.processWorkers <= 0 {
		s.processWorkers = runtime.NumCPU()
	}

	for _, cat := range []struct {
		name  string
		store **categoryStore
	}{
		{config.RawFilesDirName, &s.raw},
		{config.KnowledgesDirName, &s.knowledges},
		{config.EmbeddingsDirName, &s.embeddings},
	} {
		cs, err := newCategoryStore(layout, cat.name)
		if err != nil {
			return nil, err
		}
		*cat.store = cs
	}

	logging.Boot("local storage initialized at %s (%d knowledges, %d raw files, %d embeddings)",
		layout.BaseDir, s.knowledges.count(), s.raw.count(), s.embeddings.count())
	return s, nil
}

// BaseDir returns the resolved storage root.
func (s *Local) BaseDir() string {
	return s.layout.BaseDir
}

// RebuildAllIndexes forces the scan-and-reconstruct path on every category.
// Categories have independent tables, so the rebuilds run concurrently.
func (s *Local) RebuildAllIndexes() error {
	timer := logging.StartTimer(logging.CategoryIndex, "RebuildAllIndexes")
	defer timer.Stop()

	var g errgroup.Group
	for _, cs := range []*categoryStore{s.raw, s.knowledges, s.embeddings} {
		g.Go(cs.rebuild)
	}
	return g.Wait()
}

// Info reports storage statistics.
func (s *Local) Info() Info {
	return Info{
		BaseDir:        s.layout.BaseDir,
		KnowledgeCount: s.knowledges.count(),
		RawFileCount:   s.raw.count(),
		EmbeddingCount: s.embeddings.count(),
		IndexFiles: map[string]string{
			config.RawFilesDirName:   s.layout.IndexPath(config.RawFilesDirName),
			config.KnowledgesDirName: s.layout.IndexPath(config.KnowledgesDirName),
			config.EmbeddingsDirName: s.layout.IndexPath(config.EmbeddingsDirName),
		},
	}
}

// Close stops background machinery. The stores themselves hold no open
// handles between operations.
func (s *Local) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	return nil
}

// normalizeExt gives extensions a leading dot; empty stays empty so callers
// can apply their own default.
func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if ext[0] != '.' {
		return "." + ext
	}
	return ext
}
