package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semidx-cli/internal/core/domain"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semidx-cli/internal/core/ports/driving"
	"github.com/custodia-labs/semidx-cli/internal/logger"
)

// debounceDelay coalesces the burst of events editors emit on save.
const debounceDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index current as documents change",
	Long: `Watches the documents root and re-indexes documents as they are
created, modified, or deleted. Runs until interrupted. Config file
changes are picked up live.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if indexerService == nil {
		return errors.New("index service not configured")
	}

	if err := configSource.Watch(); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, docSource.Root()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for changes. Ctrl-C to stop.\n", docSource.Root())
	w := &docWatcher{
		watcher: watcher,
		indexer: indexerService,
		root:    docSource.Root(),
		timers:  make(map[string]*time.Timer),
	}
	w.run(ctx)
	cmd.Println("Watch stopped.")
	return nil
}

// watchTree registers the root and every non-hidden subdirectory, since
// fsnotify watches are not recursive.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// docWatcher debounces filesystem events and applies them to the index.
type docWatcher struct {
	watcher *fsnotify.Watcher
	indexer driving.Indexer
	root    string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func (w *docWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *docWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// New directories need their own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.watcher.Add(event.Name); err != nil {
					logger.Warn("Cannot watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !docSource.Matches(rel) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.debounce(rel, func() { w.remove(ctx, rel) })
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		w.debounce(rel, func() { w.update(ctx, rel) })
	}
}

// debounce schedules fn for path, resetting any pending schedule so a
// save burst triggers one re-index.
func (w *docWatcher) debounce(path string, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		fn()
	})
}

func (w *docWatcher) update(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	logger.Info("Change detected: %s", path)
	if err := w.indexer.UpdateDocument(ctx, path, driven.NopSink{}); err != nil {
		if errors.Is(err, domain.ErrIndexInProgress) {
			// Another event is mid-update; the debounce will fold repeats.
			logger.Debug("Update of %s deferred: pass in progress", path)
			return
		}
		logger.Error("Failed to update %s: %v", path, err)
	}
}

func (w *docWatcher) remove(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	logger.Info("Removed: %s", path)
	if err := w.indexer.RemoveDocument(ctx, path); err != nil {
		logger.Error("Failed to remove %s from index: %v", path, err)
	}
}
