package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/meeting-notes/internal/logger"
)

type implWatcher struct {
	inputDir      string
	match         Matcher
	handler       EventHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	maxConcurrent int
	semaphore     chan struct{}
	settle        time.Duration
	wg            sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Start begins monitoring the input directory for new audio files
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inputDir)

	if err := w.sweep(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// a file moved into the directory shows up as Create too
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !w.match(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New audio detected: %s", event.Name)
			select {
			case <-time.After(w.settle):
			case <-ctx.Done():
				continue
			}
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// sweep hands over audio that was already waiting before the watcher started.
func (w *implWatcher) sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.inputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		path := filepath.Join(w.inputDir, entry.Name())
		if entry.Type().IsRegular() && w.match(path) {
			pending = append(pending, path)
		}
	}
	sort.Strings(pending)

	if len(pending) > 0 {
		w.logger.Info(ctx, "Found %d waiting audio file(s)", len(pending))
	}
	for _, path := range pending {
		if !w.dispatch(ctx, path) {
			break
		}
	}
	return nil
}

// dispatch runs the handler in a goroutine once a slot is free.
// It returns false when ctx is cancelled while waiting for a slot.
func (w *implWatcher) dispatch(ctx context.Context, filePath string) bool {
	w.mu.Lock()
	if _, busy := w.inFlight[filePath]; busy {
		w.mu.Unlock()
		w.logger.Debug(ctx, "Already processing: %s", filePath)
		return true
	}
	w.inFlight[filePath] = struct{}{}
	w.mu.Unlock()

	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		w.forget(filePath)
		return false
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()
		defer w.forget(filePath)

		if err := w.handler(ctx, filePath); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", filePath, err)
		}
	}()
	return true
}

func (w *implWatcher) forget(filePath string) {
	w.mu.Lock()
	delete(w.inFlight, filePath)
	w.mu.Unlock()
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
