package bundle

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"editcmd/internal/logging"
)

// Watcher watches loaded bundle directories and feeds settled file changes
// back into the Library, so an edited command file replaces its registry
// entry.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	library     *Library
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// NewWatcher creates a watcher over lib. Changes to a file are applied once
// no further events arrive for debounce.
func NewWatcher(lib *Library, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		watcher:     w,
		library:     lib,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start watches every loaded bundle directory and its commands directory
// when present. It does not block.
func (bw *Watcher) Start(ctx context.Context) error {
	bw.mu.Lock()
	if bw.running {
		bw.mu.Unlock()
		return nil
	}
	bw.running = true
	bw.mu.Unlock()

	for _, dir := range bw.library.Dirs() {
		bw.add(dir)
		cmds := filepath.Join(dir, CommandsDir)
		if info, err := os.Stat(cmds); err != nil || !info.IsDir() {
			logging.BundlesDebug("Watcher: no commands directory in %s", dir)
			continue
		}
		bw.add(cmds)
	}

	go bw.run(ctx)
	return nil
}

func (bw *Watcher) add(dir string) {
	if err := bw.watcher.Add(dir); err != nil {
		logging.BundlesWarn("Watcher: failed to watch %s: %v", dir, err)
		return
	}
	logging.BundlesDebug("Watcher: watching %s", dir)
}

// Stop stops the watcher and waits for the event loop to exit.
func (bw *Watcher) Stop() {
	bw.mu.Lock()
	if !bw.running {
		bw.mu.Unlock()
		_ = bw.watcher.Close()
		return
	}
	bw.running = false
	bw.mu.Unlock()

	close(bw.stopCh)
	<-bw.doneCh

	if err := bw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryBundles).Error("Watcher: error closing watcher: %v", err)
	}
	logging.Bundles("Watcher: stopped")
}

// Done is closed when the event loop exits.
func (bw *Watcher) Done() <-chan struct{} { return bw.doneCh }

func (bw *Watcher) run(ctx context.Context) {
	defer close(bw.doneCh)

	tick := bw.debounceDur / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.BundlesDebug("Watcher: context cancelled")
			return

		case <-bw.stopCh:
			return

		case event, ok := <-bw.watcher.Events:
			if !ok {
				return
			}
			bw.handleEvent(event)

		case err, ok := <-bw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryBundles).Error("Watcher error: %v", err)
			bw.mu.Lock()
			bw.stats.Errors++
			bw.mu.Unlock()

		case <-debounceTicker.C:
			bw.processDebouncedEvents()
		}
	}
}

func (bw *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != ManifestFile && !IsCommandFile(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.BundlesDebug("Watcher: %s event for %s", eventType, event.Name)

	bw.mu.Lock()
	defer bw.mu.Unlock()
	bw.stats.LastEventTime = time.Now()
	bw.stats.LastEventPath = event.Name
	bw.stats.LastEventType = eventType
	switch eventType {
	case "create":
		bw.stats.FilesCreated++
	case "modify":
		bw.stats.FilesModified++
	case "delete", "rename":
		bw.stats.FilesDeleted++
	}
	bw.debounceMap[event.Name] = time.Now()
}

func (bw *Watcher) processDebouncedEvents() {
	bw.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range bw.debounceMap {
		if now.Sub(at) >= bw.debounceDur {
			settled = append(settled, path)
			delete(bw.debounceMap, path)
		}
	}
	bw.mu.Unlock()

	for _, path := range settled {
		err := bw.library.ReloadFile(path)
		bw.mu.Lock()
		if err != nil {
			bw.stats.Errors++
		} else {
			bw.stats.Reloads++
		}
		bw.mu.Unlock()
		if err != nil {
			logging.BundlesWarn("Watcher: reload of %s failed: %v", path, err)
		}
	}
}

// Stats returns a snapshot of the watcher statistics.
func (bw *Watcher) Stats() WatcherStats {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	return bw.stats
}

// IsWatching reports whether the watcher is running.
func (bw *Watcher) IsWatching() bool {
	bw.mu.RLock()
	defer bw.mu.RUnlock()
	return bw.running
}

// WatchedDirs returns the directories being watched.
func (bw *Watcher) WatchedDirs() []string {
	return bw.watcher.WatchList()
}
