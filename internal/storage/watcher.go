package storage

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"quantmind/internal/logging"
)

// TamperWatcher watches the category roots for out-of-band file removals
// and evicts the matching index entries immediately instead of waiting for
// the next read to trip over them. It is a latency optimization only; the
// self-healing read path stays the correctness backstop.
type TamperWatcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	stores  map[string]*categoryStore // category root -> store
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	stats TamperWatcherStats
}

// TamperWatcherStats tracks watcher activity for diagnostics and tests.
type TamperWatcherStats struct {
	RemovalsSeen int
	Evicted      int
	Errors       int
}

func newTamperWatcher(stores ...*categoryStore) (*TamperWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tw := &TamperWatcher{
		watcher: w,
		stores:  make(map[string]*categoryStore, len(stores)),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, cs := range stores {
		tw.stores[cs.dir] = cs
	}
	return tw, nil
}

// Start begins watching the category roots. Non-blocking; events are
// handled in a goroutine until Stop or ctx cancellation.
func (tw *TamperWatcher) Start(ctx context.Context) error {
	tw.mu.Lock()
	if tw.running {
		tw.mu.Unlock()
		return nil
	}
	tw.running = true
	tw.mu.Unlock()

	for dir := range tw.stores {
		if err := tw.watcher.Add(dir); err != nil {
			return wrapErr("watch", filepath.Base(dir), err)
		}
		logging.Get(logging.CategoryWatcher).Debug("watching %s", dir)
	}

	go tw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (tw *TamperWatcher) Stop() {
	tw.mu.Lock()
	if !tw.running {
		tw.mu.Unlock()
		return
	}
	tw.running = false
	tw.mu.Unlock()

	close(tw.stopCh)
	<-tw.doneCh
	_ = tw.watcher.Close()
}

// Stats returns a snapshot of watcher activity.
func (tw *TamperWatcher) Stats() TamperWatcherStats {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.stats
}

func (tw *TamperWatcher) run(ctx context.Context) {
	defer close(tw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tw.stopCh:
			return
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			tw.handleRemoval(event.Name)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.mu.Lock()
			tw.stats.Errors++
			tw.mu.Unlock()
			logging.Get(logging.CategoryWatcher).Warn("watch error: %v", err)
		}
	}
}

func (tw *TamperWatcher) handleRemoval(path string) {
	cs, ok := tw.stores[filepath.Dir(path)]
	if !ok {
		return
	}
	id, _ := splitStem(filepath.Base(path))

	tw.mu.Lock()
	tw.stats.RemovalsSeen++
	tw.mu.Unlock()

	if cs.evictMissing(id) {
		tw.mu.Lock()
		tw.stats.Evicted++
		tw.mu.Unlock()
		logging.Get(logging.CategoryWatcher).Info("evicted %s/%s after out-of-band removal", cs.name, id)
	}
}

// WatchTampering starts a tamper watcher over all category roots. Calling
// it twice is a no-op; Close stops the watcher.
func (s *Local) WatchTampering(ctx context.Context) error {
	if s.watcher != nil {
		return nil
	}
	tw, err := newTamperWatcher(s.raw, s.knowledges, s.embeddings)
	if err != nil {
		return wrapErr("watch", "", err)
	}
	if err := tw.Start(ctx); err != nil {
		_ = tw.watcher.Close()
		return err
	}
	s.watcher = tw
	return nil
}

// Watcher exposes the running tamper watcher, or nil.
func (s *Local) Watcher() *TamperWatcher {
	return s.watcher
}
