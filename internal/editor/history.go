package editor

import (
	"canvas/internal/domain"
)

// Snapshot is one history entry: blocks in z-order, canvas size and
// background. Snapshots are deep copies and never change once taken.
type Snapshot struct {
	Blocks     []*domain.Block `json:"blocks"`
	Size       domain.Size     `json:"size"`
	Background string          `json:"background,omitempty"`
}

// Template returns the snapshot as a template.
func (s Snapshot) Template() *domain.Template {
	return &domain.Template{Size: s.Size, Background: s.Background, Blocks: domain.CloneBlocks(s.Blocks)}
}

// SnapshotOf builds a snapshot from a template.
func SnapshotOf(t *domain.Template) Snapshot {
	return Snapshot{Blocks: domain.CloneBlocks(t.Blocks), Size: t.Size, Background: t.Background}
}

// history keeps both stacks most-recent-last internally.
type history struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

func (h *history) push(snap Snapshot) {
	h.undo = append(h.undo, snap)
	h.redo = nil
	h.trim()
}

func (h *history) trim() {
	if h.limit <= 0 {
		return
	}
	if n := len(h.undo) - h.limit; n > 0 {
		h.undo = append([]Snapshot(nil), h.undo[n:]...)
	}
	if n := len(h.redo) - h.limit; n > 0 {
		h.redo = append([]Snapshot(nil), h.redo[n:]...)
	}
}

func pop(stack []Snapshot) (Snapshot, []Snapshot) {
	last := len(stack) - 1
	return stack[last], stack[:last]
}

// reversed copies stack into most-recent-first order.
func reversed(stack []Snapshot) []Snapshot {
	out := make([]Snapshot, len(stack))
	for i, snap := range stack {
		out[len(stack)-1-i] = snap
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Blocks:     s.orderedLocked(true),
		Size:       s.canvas.Size,
		Background: s.canvas.Background,
	}
}

// record pushes the pre-mutation snapshot. Call it before mutating.
func (s *Store) record() {
	s.history.push(s.snapshotLocked())
	s.revision++
}

// restoreLocked replaces live blocks, order, size and background with snap.
func (s *Store) restoreLocked(snap Snapshot) {
	s.blocks = make(map[string]*domain.Block, len(snap.Blocks))
	s.order = make([]string, 0, len(snap.Blocks))
	for _, b := range snap.Blocks {
		c := b.Clone()
		s.blocks[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	s.canvas.Size = snap.Size
	s.canvas.Background = snap.Background
	s.revision++
	s.selected = nil
	if _, ok := s.blocks[s.hovered]; !ok {
		s.hovered = ""
	}
	s.centerLocked()
}

// Undo restores the most recent undo entry, pushing the current state onto
// the redo stack. It reports false when there is nothing to undo.
func (s *Store) Undo() bool {
	return s.update(func() bool {
		if len(s.history.undo) == 0 {
			return false
		}
		var snap Snapshot
		snap, s.history.undo = pop(s.history.undo)
		s.history.redo = append(s.history.redo, s.snapshotLocked())
		s.history.trim()
		s.restoreLocked(snap)
		s.logger.Debug("undo", "blocks", len(s.order))
		return true
	})
}

// Redo is the inverse of Undo.
func (s *Store) Redo() bool {
	return s.update(func() bool {
		if len(s.history.redo) == 0 {
			return false
		}
		var snap Snapshot
		snap, s.history.redo = pop(s.history.redo)
		s.history.undo = append(s.history.undo, s.snapshotLocked())
		s.history.trim()
		s.restoreLocked(snap)
		s.logger.Debug("redo", "blocks", len(s.order))
		return true
	})
}

// History returns both stacks, most recent first.
func (s *Store) History() (undo, redo []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return reversed(s.history.undo), reversed(s.history.redo)
}

// RestoreHistory replaces both stacks. Both are given most recent first, as
// returned by History.
func (s *Store) RestoreHistory(undo, redo []Snapshot) {
	s.update(func() bool {
		s.history.undo = reversed(undo)
		s.history.redo = reversed(redo)
		s.history.trim()
		return true
	})
}

// ClearHistory drops both stacks.
func (s *Store) ClearHistory() {
	s.update(func() bool {
		if len(s.history.undo) == 0 && len(s.history.redo) == 0 {
			return false
		}
		s.history.undo, s.history.redo = nil, nil
		return true
	})
}
