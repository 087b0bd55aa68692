package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"canvas/internal/domain"
	"canvas/internal/editor"
)

const defaultReloadDelay = 200 * time.Millisecond

// TemplateWatcher reloads a template file into the store whenever it is
// written. Editors often save in bursts, so reloads are debounced.
type TemplateWatcher struct {
	store   *editor.Store
	emitter EventEmitter
	logger  *log.Logger
	delay   time.Duration

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	path    string
	timer   *time.Timer
}

// NewTemplateWatcher creates an idle watcher; call Watch then Run.
func NewTemplateWatcher(store *editor.Store, emitter EventEmitter, logger *log.Logger, delay time.Duration) (*TemplateWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if delay <= 0 {
		delay = defaultReloadDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TemplateWatcher{store: store, emitter: emitter, logger: logger, delay: delay, watcher: watcher}, nil
}

// Watch sets the template file to follow. The directory is watched because
// many editors replace the file instead of writing it in place.
func (w *TemplateWatcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.path = absPath
	w.mu.Unlock()
	return w.watcher.Add(filepath.Dir(absPath))
}

// Reload reads the watched file and loads it into the store. An invalid
// file leaves the store unchanged.
func (w *TemplateWatcher) Reload(ctx context.Context) error {
	w.mu.Lock()
	path := w.path
	w.mu.Unlock()
	if path == "" {
		return domain.NewError(domain.ErrCodeNotFound, "no template is being watched")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	t, err := domain.DecodeTemplate(data)
	if err != nil {
		return err
	}
	if err := w.store.LoadTemplate(t); err != nil {
		return err
	}
	w.logger.Info("template reloaded", "path", path, "blocks", len(t.Blocks))
	w.emitter.Emit(ctx, EventTemplateReloaded, path)
	return nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (w *TemplateWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.mu.Lock()
			watched := absPath == w.path
			w.mu.Unlock()
			if watched {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

func (w *TemplateWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	path := w.path
	w.timer = time.AfterFunc(w.delay, func() {
		if err := w.Reload(ctx); err != nil {
			w.logger.Warn("template reload failed", "path", path, "err", err)
		}
	})
}

func (w *TemplateWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops the watcher.
func (w *TemplateWatcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}
