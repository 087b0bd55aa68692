// Package editor holds the canvas Block Store: the block map, z-order,
// selection, canvas settings and undo/redo history behind one action API.
package editor

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// Mode is the current interaction mode of the canvas.
type Mode string

const (
	ModeMove   Mode = "move"
	ModeSelect Mode = "select"
	ModeText   Mode = "text"
	ModeFrame  Mode = "frame"
	ModeArrow  Mode = "arrow"
	ModeImage  Mode = "image"
	ModeHTML   Mode = "html"
	ModeDraw   Mode = "draw"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMove, ModeSelect, ModeText, ModeFrame, ModeArrow, ModeImage, ModeHTML, ModeDraw:
		return true
	}
	return false
}

// PlacedType returns the block type a placing mode creates.
func (m Mode) PlacedType() (domain.BlockType, bool) {
	switch m {
	case ModeText:
		return domain.BlockTypeText, true
	case ModeFrame:
		return domain.BlockTypeFrame, true
	case ModeArrow:
		return domain.BlockTypeArrow, true
	case ModeImage:
		return domain.BlockTypeImage, true
	case ModeHTML:
		return domain.BlockTypeHTML, true
	case ModeDraw:
		return domain.BlockTypeDraw, true
	}
	return "", false
}

// CanvasSettings is the non-block part of the editor state.
type CanvasSettings struct {
	Size          domain.Size    `json:"size"`
	Background    string         `json:"background,omitempty"`
	Mode          Mode           `json:"mode"`
	IsTextEditing bool           `json:"isTextEditing"`
	Zoom          float64        `json:"zoom"`
	StagePosition geometry.Point `json:"stagePosition"`
	ContainerSize domain.Size    `json:"containerSize"`
	HasCentered   bool           `json:"hasCentered"`
}

// Viewport returns the canvas→screen mapping of the settings.
func (c CanvasSettings) Viewport() geometry.Viewport {
	return geometry.Viewport{Zoom: c.Zoom, Pan: c.StagePosition}
}

// PendingImage is an image waiting to be placed by the image mode.
type PendingImage struct {
	URL  string             `json:"url"`
	Size geometry.ImageSize `json:"size"`
}

// State is an immutable view of the store handed to callers and observers.
// Blocks are deep copies in z-order (bottom first).
type State struct {
	Blocks       []*domain.Block `json:"blocks"`
	SelectedIDs  []string        `json:"selectedIds"`
	HoveredID    string          `json:"hoveredId,omitempty"`
	Canvas       CanvasSettings  `json:"canvas"`
	PendingImage *PendingImage   `json:"pendingImage,omitempty"`
	Clipboard    int             `json:"clipboard"`
	UndoDepth    int             `json:"undoDepth"`
	RedoDepth    int             `json:"redoDepth"`
	// Revision increases whenever the document content changes.
	Revision uint64 `json:"revision"`
}

// DefaultHistoryLimit bounds each history stack unless overridden.
const DefaultHistoryLimit = 100

// Store is the single source of truth for a canvas. All methods are safe for
// concurrent use; observers run after the lock is released.
type Store struct {
	mu sync.Mutex

	blocks    map[string]*domain.Block
	order     []string
	selected  []string
	hovered   string
	canvas    CanvasSettings
	pending   *PendingImage
	clipboard []*domain.Block
	history   history
	revision  uint64

	maxImage float64
	logger   *log.Logger

	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithSize sets the initial canvas size.
func WithSize(size domain.Size) Option {
	return func(s *Store) { s.canvas.Size = size }
}

// WithBackground sets the initial canvas background.
func WithBackground(bg string) Option {
	return func(s *Store) { s.canvas.Background = bg }
}

// WithHistoryLimit caps each history stack. Zero or less means unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Store) { s.history.limit = n }
}

// WithMaxImageDimension caps the longer side of newly added images.
func WithMaxImageDimension(px float64) Option {
	return func(s *Store) {
		if px > 0 {
			s.maxImage = px
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemplate seeds blocks, size and background from t. Blocks are cloned
// and defaulted; the template is expected to come from domain.DecodeTemplate.
func WithTemplate(t *domain.Template) Option {
	return func(s *Store) {
		if t == nil {
			return
		}
		s.resetFromTemplate(t.Clone())
	}
}

// New builds an empty store with a 1280×720 canvas in select mode.
func New(opts ...Option) *Store {
	s := &Store{
		blocks: make(map[string]*domain.Block),
		canvas: CanvasSettings{
			Size: domain.Size{Width: 1280, Height: 720},
			Mode: ModeSelect,
			Zoom: 1,
		},
		history:  history{limit: DefaultHistoryLimit},
		maxImage: geometry.MaxImageDimension,
		logger:   log.New(io.Discard),
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive the state after every committed change.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update runs fn under the lock. When fn reports a change, observers are
// notified with the resulting state once the lock is released.
func (s *Store) update(fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return false
	}
	var subs []func(State)
	var st State
	if len(s.subs) > 0 {
		st = s.stateLocked()
		subs = make([]func(State), 0, len(s.subs))
		for _, f := range s.subs {
			subs = append(subs, f)
		}
	}
	s.mu.Unlock()

	for _, f := range subs {
		f(st)
	}
	return true
}

// State returns a deep-copied view of the store.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	st := State{
		Blocks:      s.orderedLocked(true),
		SelectedIDs: append([]string(nil), s.selected...),
		HoveredID:   s.hovered,
		Canvas:      s.canvas,
		Clipboard:   len(s.clipboard),
		UndoDepth:   len(s.history.undo),
		RedoDepth:   len(s.history.redo),
		Revision:    s.revision,
	}
	if s.pending != nil {
		p := *s.pending
		st.PendingImage = &p
	}
	return st
}

// orderedLocked returns blocks in z-order, cloned when clone is set.
func (s *Store) orderedLocked(clone bool) []*domain.Block {
	out := make([]*domain.Block, 0, len(s.order))
	for _, id := range s.order {
		b, ok := s.blocks[id]
		if !ok {
			continue
		}
		if clone {
			b = b.Clone()
		}
		out = append(out, b)
	}
	return out
}

// Revision returns the document revision; it changes with every recorded
// mutation, undo and redo.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Block returns a copy of the block with id.
func (s *Store) Block(id string) (*domain.Block, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Blocks returns copies of all blocks in z-order.
func (s *Store) Blocks() []*domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedLocked(true)
}

// Order returns the z-order ids, bottom first.
func (s *Store) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// SelectedIDs returns the current selection.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// Canvas returns the current canvas settings.
func (s *Store) Canvas() CanvasSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas
}

// Template exports blocks, size and background as a template.
func (s *Store) Template() *domain.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &domain.Template{
		Size:       s.canvas.Size,
		Background: s.canvas.Background,
		Blocks:     s.orderedLocked(true),
	}
}

// MaxImageDimension returns the image placement cap.
func (s *Store) MaxImageDimension() float64 {
	return s.maxImage
}

// resetFromTemplate replaces blocks, order, size and background and clears
// selection and hover. Caller holds the lock (or owns s exclusively).
func (s *Store) resetFromTemplate(t *domain.Template) {
	s.blocks = make(map[string]*domain.Block, len(t.Blocks))
	s.order = make([]string, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		normalize(b)
		if _, dup := s.blocks[b.ID]; dup {
			continue
		}
		s.blocks[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	s.canvas.Size = t.Size
	s.canvas.Background = t.Background
	s.selected = nil
	s.hovered = ""
}

func (s *Store) indexOfLocked(id string) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}

// centerLocked re-centres the stage when both sizes are known.
func (s *Store) centerLocked() {
	s.canvas.HasCentered = false
	if pos, ok := geometry.CenterStage(s.canvas.Size, s.canvas.ContainerSize, s.canvas.Zoom); ok {
		s.canvas.StagePosition = pos
		s.canvas.HasCentered = true
	}
}
