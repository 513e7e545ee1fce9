package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"feedsift/internal/config"
)

// defaultReloadDebounce absorbs the burst of events editors emit per save.
const defaultReloadDebounce = 500 * time.Millisecond

// SourcesWatcher reloads the sources file when it changes on disk and hands
// every valid version to onReload. An invalid file is logged and ignored,
// so the previous configuration stays active.
//
// The parent directory is watched rather than the file itself because
// editors and config management tools usually replace files by rename.
type SourcesWatcher struct {
	path     string
	debounce time.Duration
	onReload func(*config.SourcesFile)
	metrics  *WorkerMetrics
	logger   *slog.Logger

	ready chan struct{}
}

// NewSourcesWatcher creates a watcher for path. metrics may be nil.
func NewSourcesWatcher(path string, onReload func(*config.SourcesFile), metrics *WorkerMetrics, logger *slog.Logger) *SourcesWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourcesWatcher{
		path:     filepath.Clean(path),
		debounce: defaultReloadDebounce,
		onReload: onReload,
		metrics:  metrics,
		logger:   logger.With(slog.String("sources_file", path)),
		ready:    make(chan struct{}),
	}
}

// Run watches until ctx is canceled.
func (w *SourcesWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create sources watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	close(w.ready)
	w.logger.Info("watching sources file for changes")

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("sources watcher error", slog.Any("error", err))

		case <-reload:
			reload = nil
			_ = w.Reload()
		}
	}
}

// Reload reads the file once and applies it when valid.
func (w *SourcesWatcher) Reload() error {
	sf, err := config.LoadSources(w.path)
	if w.metrics != nil {
		w.metrics.RecordReload(err)
	}
	if err != nil {
		w.logger.Error("sources reload failed, keeping previous configuration", slog.Any("error", err))
		return err
	}
	w.onReload(sf)
	w.logger.Info("sources reloaded",
		slog.Int("sources", len(sf.Sources)),
		slog.Int("groups", len(sf.Groups)))
	return nil
}
