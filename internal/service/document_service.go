package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Document Service: binds a Block Store to a persisted document
// ─────────────────────────────────────────────────────────────

// DocumentService loads documents into a store and saves them back together
// with their undo/redo stacks.
type DocumentService struct {
	store   *editor.Store
	docs    *storage.DocumentStore
	history *storage.HistoryStore
	emitter EventEmitter
	logger  *log.Logger

	mu       sync.Mutex
	current  *storage.Document
	savedRev uint64
	// saving holds one channel per document with a save in flight; it is
	// closed when that save returns.
	saving map[string]chan struct{}
}

func NewDocumentService(store *editor.Store, docs *storage.DocumentStore, history *storage.HistoryStore, emitter EventEmitter, logger *log.Logger) *DocumentService {
	if logger == nil {
		logger = log.Default()
	}
	return &DocumentService{store: store, docs: docs, history: history, emitter: emitter, logger: logger}
}

// Store returns the bound Block Store.
func (s *DocumentService) Store() *editor.Store {
	return s.store
}

// Current returns the open document without its template.
func (s *DocumentService) Current() (storage.DocumentSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return storage.DocumentSummary{}, false
	}
	return storage.DocumentSummary{
		ID:         s.current.ID,
		Name:       s.current.Name,
		SourcePath: s.current.SourcePath,
		Blocks:     len(s.store.Order()),
		UpdatedAt:  s.current.UpdatedAt,
	}, true
}

// Dirty reports whether the store changed since the last load or save.
func (s *DocumentService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.store.Revision() != s.savedRev
}

// Create starts a new empty document of the given size and persists it.
func (s *DocumentService) Create(ctx context.Context, name string, size domain.Size) (*storage.Document, error) {
	t := &domain.Template{Size: size, Background: s.store.Canvas().Background, Blocks: []*domain.Block{}}
	return s.adopt(ctx, &storage.Document{ID: domain.NewID(), Name: name, Template: t})
}

// Import creates a document from a template file on disk.
func (s *DocumentService) Import(ctx context.Context, name, path string) (*storage.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	t, err := domain.DecodeTemplate(data)
	if err != nil {
		return nil, err
	}
	return s.adopt(ctx, &storage.Document{ID: domain.NewID(), Name: name, SourcePath: path, Template: t})
}

// adopt loads a new document into the store with empty history and saves it.
func (s *DocumentService) adopt(ctx context.Context, doc *storage.Document) (*storage.Document, error) {
	if err := s.store.LoadTemplate(doc.Template); err != nil {
		return nil, err
	}
	s.store.ClearHistory()
	if err := s.docs.Save(doc); err != nil {
		return nil, err
	}
	if err := s.history.Clear(doc.ID); err != nil {
		return nil, fmt.Errorf("clear history: %w", err)
	}

	s.mu.Lock()
	s.current = doc
	s.savedRev = s.store.Revision()
	s.mu.Unlock()

	s.logger.Info("document created", "id", doc.ID, "name", doc.Name, "blocks", len(doc.Template.Blocks))
	s.emitter.Emit(ctx, EventDocumentLoaded, doc.ID)
	return doc, nil
}

// Open loads a stored document and its history into the store.
func (s *DocumentService) Open(ctx context.Context, id string) (*storage.Document, error) {
	doc, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	undo, redo, err := s.history.Load(id)
	if err != nil {
		return nil, err
	}
	if err := s.store.LoadTemplate(doc.Template); err != nil {
		return nil, err
	}
	s.store.RestoreHistory(snapshots(undo), snapshots(redo))

	s.mu.Lock()
	s.current = doc
	s.savedRev = s.store.Revision()
	s.mu.Unlock()

	s.logger.Info("document loaded", "id", id, "blocks", len(doc.Template.Blocks), "undo", len(undo), "redo", len(redo))
	s.emitter.Emit(ctx, EventDocumentLoaded, id)
	return doc, nil
}

// Save writes the store's current template and history to the open
// document. A save already running for the document makes this a no-op.
func (s *DocumentService) Save(ctx context.Context) error {
	s.mu.Lock()
	doc := s.current
	s.mu.Unlock()
	if doc == nil {
		return domain.NewError(domain.ErrCodeNotFound, "no document is open")
	}
	done, ok := s.beginSave(doc.ID)
	if !ok {
		s.logger.Debug("save already running", "id", doc.ID)
		return nil
	}
	defer s.endSave(doc.ID, done)

	rev := s.store.Revision()
	t := s.store.Template()
	undo, redo := s.store.History()

	next := *doc
	next.Template = t
	if err := s.docs.Save(&next); err != nil {
		return err
	}
	if err := s.history.Save(doc.ID, templates(undo), templates(redo)); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == doc.ID {
		s.current = &next
		s.savedRev = rev
	}
	s.mu.Unlock()

	s.logger.Info("document saved", "id", doc.ID, "blocks", len(t.Blocks))
	s.emitter.Emit(ctx, EventDocumentSaved, doc.ID)
	return nil
}

// SaveIfDirty saves only when the store changed since the last save.
func (s *DocumentService) SaveIfDirty(ctx context.Context) (bool, error) {
	if !s.Dirty() {
		return false, nil
	}
	if err := s.Save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// List returns all stored documents.
func (s *DocumentService) List() ([]storage.DocumentSummary, error) {
	return s.docs.List()
}

// Wait blocks until running saves finish or ctx is done.
func (s *DocumentService) Wait(ctx context.Context) {
	s.mu.Lock()
	pending := make([]chan struct{}, 0, len(s.saving))
	for _, ch := range s.saving {
		pending = append(pending, ch)
	}
	s.mu.Unlock()

	for _, ch := range pending {
		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}

// beginSave claims docID for one save. It reports false while another save
// of the same document is running.
func (s *DocumentService) beginSave(docID string) (chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.saving[docID]; busy {
		return nil, false
	}
	if s.saving == nil {
		s.saving = make(map[string]chan struct{})
	}
	done := make(chan struct{})
	s.saving[docID] = done
	return done, true
}

func (s *DocumentService) endSave(docID string, done chan struct{}) {
	s.mu.Lock()
	delete(s.saving, docID)
	s.mu.Unlock()
	close(done)
}

func snapshots(ts []*domain.Template) []editor.Snapshot {
	out := make([]editor.Snapshot, len(ts))
	for i, t := range ts {
		out[i] = editor.SnapshotOf(t)
	}
	return out
}

func templates(snaps []editor.Snapshot) []*domain.Template {
	out := make([]*domain.Template, len(snaps))
	for i, snap := range snaps {
		out[i] = snap.Template()
	}
	return out
}
