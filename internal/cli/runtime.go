package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"canvas/internal/config"
	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/service"
	"canvas/internal/storage"
)

// runtime is the wired application behind serve and watch: one Block Store
// bound to the SQLite document store.
type runtime struct {
	cfg       config.Config
	logger    *log.Logger
	db        *storage.DB
	store     *editor.Store
	docs      *service.DocumentService
	proposals *service.ProposalService
	approvals *storage.ApprovalStore
	emitter   service.EventEmitter

	autosave *service.Autosaver
	watchers []*service.TemplateWatcher
}

func openRuntime(cfg config.Config, logger *log.Logger) (*runtime, error) {
	db, err := storage.New(cfg.DBPath())
	if err != nil {
		return nil, err
	}
	logger.Debug("database opened", "path", db.Path())

	store := editor.New(append(cfg.StoreOptions(), editor.WithLogger(logger.WithPrefix("editor")))...)
	emitter := service.LogEmitter{Logger: logger}
	return &runtime{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		store:     store,
		docs:      service.NewDocumentService(store, storage.NewDocumentStore(db), storage.NewHistoryStore(db, cfg.Editor.HistoryLimit), emitter, logger),
		proposals: service.NewProposalService(store, emitter, logger),
		approvals: storage.NewApprovalStore(db),
		emitter:   emitter,
	}, nil
}

// openDocument opens docID, imports importPath, or creates a new empty
// document, in that order of preference.
func (r *runtime) openDocument(ctx context.Context, docID, importPath, name string) (*storage.Document, error) {
	switch {
	case docID != "":
		return r.docs.Open(ctx, docID)
	case importPath != "":
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(importPath), filepath.Ext(importPath))
		}
		return r.docs.Import(ctx, name, importPath)
	default:
		if name == "" {
			name = "Untitled"
		}
		return r.docs.Create(ctx, name, r.cfg.Size())
	}
}

// startAutosave starts the configured schedule. It is a no-op when autosave
// is disabled.
func (r *runtime) startAutosave(ctx context.Context) error {
	if !r.cfg.Autosave.Enabled {
		return nil
	}
	a, err := service.NewAutosaver(ctx, r.docs, r.cfg.Autosave.Schedule, r.logger)
	if err != nil {
		return err
	}
	a.Start()
	r.autosave = a
	return nil
}

// watch follows each template file, reloading it into the store on write.
func (r *runtime) watch(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		w, err := service.NewTemplateWatcher(r.store, r.emitter, r.logger, 0)
		if err != nil {
			return err
		}
		if err := w.Watch(p); err != nil {
			w.Close()
			return fmt.Errorf("watch %s: %w", p, err)
		}
		r.watchers = append(r.watchers, w)
		go w.Run(ctx)
		r.logger.Info("watching template", "path", p)
	}
	return nil
}

// shutdown stops background work and saves unsaved changes.
func (r *runtime) shutdown() error {
	var errs []error
	for _, w := range r.watchers {
		errs = append(errs, w.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if r.autosave != nil {
		r.autosave.Stop(ctx)
	}
	if _, err := r.docs.SaveIfDirty(ctx); err != nil && !domain.IsCode(err, domain.ErrCodeNotFound) {
		errs = append(errs, err)
	}
	r.docs.Wait(ctx)
	errs = append(errs, r.db.Close())
	return errors.Join(errs...)
}

// readTemplate loads and validates a template file.
func readTemplate(path string) (*domain.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return domain.DecodeTemplate(data)
}
