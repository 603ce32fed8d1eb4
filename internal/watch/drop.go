package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/filedock/internal/logging"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long a dropped file must stay unchanged before it is
// loaded.
const DefaultSettle = 300 * time.Millisecond

// DropFunc receives settled files, sorted by path.
type DropFunc func(ctx context.Context, paths []string)

// DropWatcher loads files created or written in a directory once they stop
// changing. Hidden files are ignored.
type DropWatcher struct {
	dir    string
	settle time.Duration
	onDrop DropFunc
	logger *zap.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewDropWatcher watches dir, calling onDrop for files that have settled.
// settle <= 0 selects DefaultSettle.
func NewDropWatcher(dir string, settle time.Duration, onDrop DropFunc, logger *zap.Logger) (*DropWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat drop directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop target %s is not a directory", dir)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &DropWatcher{
		dir:     dir,
		settle:  settle,
		onDrop:  onDrop,
		logger:  logging.OrNop(logger),
		watcher: w,
		pending: make(map[string]time.Time),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. The watcher runs until Stop or ctx is done.
func (dw *DropWatcher) Start(ctx context.Context) error {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.running {
		return nil
	}
	if err := dw.watcher.Add(dw.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dw.dir, err)
	}
	dw.running = true
	dw.logger.Info("watching drop directory", zap.String("dir", dw.dir))

	go dw.run(ctx)
	return nil
}

// Stop ends watching and waits for an in-progress batch to finish.
func (dw *DropWatcher) Stop() error {
	dw.mu.Lock()
	if !dw.running {
		dw.mu.Unlock()
		return dw.watcher.Close()
	}
	dw.running = false
	dw.mu.Unlock()

	close(dw.stopCh)
	<-dw.doneCh
	return dw.watcher.Close()
}

func (dw *DropWatcher) run(ctx context.Context) {
	defer close(dw.doneCh)

	tick := time.NewTicker(max(dw.settle/3, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-dw.stopCh:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Warn("drop watcher error", zap.Error(err))

		case now := <-tick.C:
			if paths := dw.settled(now); len(paths) > 0 {
				dw.onDrop(ctx, paths)
			}
		}
	}
}

func (dw *DropWatcher) handleEvent(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		dw.pending[event.Name] = time.Now()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(dw.pending, event.Name)
	}
}

// settled removes and returns the pending regular files untouched for the
// settle period.
func (dw *DropWatcher) settled(now time.Time) []string {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	var out []string
	for path, last := range dw.pending {
		if now.Sub(last) < dw.settle {
			continue
		}
		delete(dw.pending, path)
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, path)
	}
	slices.Sort(out)
	return out
}
