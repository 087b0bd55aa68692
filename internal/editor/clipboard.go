package editor

import (
	"math"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// CopySelectedBlocks deep-copies the selected blocks, in selection order, to
// the internal clipboard and returns how many were copied.
func (s *Store) CopySelectedBlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selected) == 0 {
		return 0
	}
	copied := make([]*domain.Block, 0, len(s.selected))
	for _, id := range s.selected {
		if b, ok := s.blocks[id]; ok {
			copied = append(copied, b.Clone())
		}
	}
	s.clipboard = copied
	return len(copied)
}

// PasteBlocks inserts clipboard clones with fresh ids, keeping their relative
// offsets. The group's top-left lands on pos, or 24px down-right of the
// copied group when pos is nil. Pasted blocks are appended and selected.
func (s *Store) PasteBlocks(pos *geometry.Point) []string {
	var ids []string
	s.update(func() bool {
		if len(s.clipboard) == 0 {
			return false
		}
		minX, minY := math.Inf(1), math.Inf(1)
		for _, b := range s.clipboard {
			minX = math.Min(minX, b.X)
			minY = math.Min(minY, b.Y)
		}
		anchor := geometry.Point{X: minX + duplicateOffset, Y: minY + duplicateOffset}
		if pos != nil {
			anchor = *pos
		}

		s.record()
		for _, b := range s.clipboard {
			c := copyOf(b, b.X-minX+anchor.X, b.Y-minY+anchor.Y)
			s.blocks[c.ID] = c
			s.order = append(s.order, c.ID)
			ids = append(ids, c.ID)
		}
		s.selected = append([]string(nil), ids...)
		s.logger.Debug("blocks pasted", "count", len(ids))
		return true
	})
	return ids
}
