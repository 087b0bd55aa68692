package editor

import (
	"math"
	"slices"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// duplicateOffset shifts duplicated and pasted blocks away from their source.
const duplicateOffset = 24

// normalize re-derives attributes that must never be stored stale: the
// arrow box follows its points and arrowhead, then the domain defaults apply.
func normalize(b *domain.Block) {
	if a, ok := b.AsArrow(); ok {
		ab := geometry.BoundsOfArrow(a)
		b.Width, b.Height = ab.Width, ab.Height
	}
	domain.EnsureDefaults(b)
}

// ── add / update ────────────────────────────────────────────

// AddBlock validates b, assigns an id when it has none, appends it on top of
// the z-order and selects it. The store keeps its own copy of b.
func (s *Store) AddBlock(b *domain.Block) (string, error) {
	if b == nil {
		return "", domain.NewError(domain.ErrCodeInvalidBlock, "block is nil")
	}
	nb := b.Clone()
	if nb.ID == "" {
		nb.ID = domain.NewID()
	}
	if err := domain.Validate(nb); err != nil {
		return "", err
	}
	normalize(nb)

	var dupErr error
	s.update(func() bool {
		if _, exists := s.blocks[nb.ID]; exists {
			dupErr = &domain.Error{Code: domain.ErrCodeInvalidBlock, Field: "id", Message: "duplicate id " + nb.ID}
			return false
		}
		s.record()
		s.blocks[nb.ID] = nb
		s.order = append(s.order, nb.ID)
		s.selected = []string{nb.ID}
		s.logger.Debug("block added", "id", nb.ID, "type", nb.Type())
		return true
	})
	if dupErr != nil {
		return "", dupErr
	}
	return nb.ID, nil
}

// UpdateBlockValues merges patch onto the block and re-validates it. An
// unknown id is a no-op reported as false. The id is preserved and the type
// may not change.
func (s *Store) UpdateBlockValues(id string, patch domain.Patch) (bool, error) {
	var patchErr error
	ok := s.update(func() bool {
		cur, ok := s.blocks[id]
		if !ok {
			return false
		}
		next, err := domain.ApplyPatch(cur, patch)
		if err != nil {
			patchErr = err
			return false
		}
		normalize(next)
		s.record()
		s.blocks[id] = next
		s.logger.Debug("block updated", "id", id, "fields", len(patch))
		return true
	})
	return ok, patchErr
}

// MutateBlock applies fn to a copy of the block and commits it. It skips
// schema validation and is meant for trusted callers such as the gesture
// controller; defaults are still re-derived and history is still recorded.
// Changes to the id, or a nil variant, are discarded.
func (s *Store) MutateBlock(id string, fn func(b *domain.Block)) bool {
	return s.update(func() bool {
		cur, ok := s.blocks[id]
		if !ok {
			return false
		}
		next := cur.Clone()
		fn(next)
		next.ID = id
		if next.Data == nil {
			next.Data = cur.Clone().Data
		}
		normalize(next)
		s.record()
		s.blocks[id] = next
		return true
	})
}

// ── delete ──────────────────────────────────────────────────

// DeleteBlock removes a block and drops it from selection and hover.
func (s *Store) DeleteBlock(id string) bool {
	return s.update(func() bool {
		if _, ok := s.blocks[id]; !ok {
			return false
		}
		s.record()
		s.removeLocked(map[string]bool{id: true})
		s.logger.Debug("block deleted", "id", id)
		return true
	})
}

// DeleteSelectedBlocks removes every selected block and clears the
// selection. An empty selection is a no-op.
func (s *Store) DeleteSelectedBlocks() bool {
	return s.update(func() bool {
		if len(s.selected) == 0 {
			return false
		}
		ids := make(map[string]bool, len(s.selected))
		for _, id := range s.selected {
			ids[id] = true
		}
		s.record()
		s.removeLocked(ids)
		s.selected = nil
		s.logger.Debug("selection deleted", "count", len(ids))
		return true
	})
}

func (s *Store) removeLocked(ids map[string]bool) {
	for id := range ids {
		delete(s.blocks, id)
	}
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return ids[v] })
	s.selected = slices.DeleteFunc(s.selected, func(v string) bool { return ids[v] })
	if ids[s.hovered] {
		s.hovered = ""
	}
}

// ── duplicate ───────────────────────────────────────────────

// copyOf clones b under a fresh id with a "Copy" label at the given position.
func copyOf(b *domain.Block, x, y float64) *domain.Block {
	c := b.Clone()
	c.ID = domain.NewID()
	c.Label = b.Label + " Copy"
	c.X = x
	c.Y = y
	normalize(c)
	return c
}

// DuplicateBlock clones a block 24px down-right of the source, inserts the
// clone directly above it and selects the clone.
func (s *Store) DuplicateBlock(id string) (string, bool) {
	var newID string
	ok := s.update(func() bool {
		src, ok := s.blocks[id]
		if !ok {
			return false
		}
		s.record()
		c := copyOf(src, src.X+duplicateOffset, src.Y+duplicateOffset)
		s.blocks[c.ID] = c
		idx := s.indexOfLocked(id)
		s.order = slices.Insert(s.order, idx+1, c.ID)
		s.selected = []string{c.ID}
		newID = c.ID
		return true
	})
	return newID, ok
}

// DuplicateBlocks clones the given blocks shifted by (dx, dy), appends the
// clones on top in their relative z-order and selects them. The sources are
// left untouched.
func (s *Store) DuplicateBlocks(ids []string, dx, dy float64) []string {
	var newIDs []string
	s.update(func() bool {
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		var sources []*domain.Block
		for _, id := range s.order {
			if want[id] {
				sources = append(sources, s.blocks[id])
			}
		}
		if len(sources) == 0 {
			return false
		}
		s.record()
		for _, src := range sources {
			c := copyOf(src, math.Round(src.X+dx), math.Round(src.Y+dy))
			s.blocks[c.ID] = c
			s.order = append(s.order, c.ID)
			newIDs = append(newIDs, c.ID)
		}
		s.selected = append([]string(nil), newIDs...)
		return true
	})
	return newIDs
}

// ── fast paths ──────────────────────────────────────────────

// ShowHideBlock toggles visibility.
func (s *Store) ShowHideBlock(id string) bool {
	return s.MutateBlock(id, func(b *domain.Block) { b.Visible = !b.Visible })
}

// SetBlockPosition moves a block to the rounded position.
func (s *Store) SetBlockPosition(id string, x, y float64) bool {
	return s.MutateBlock(id, func(b *domain.Block) {
		b.X = math.Round(x)
		b.Y = math.Round(y)
	})
}

// MoveBlocks sets several rounded positions as one history entry. Unknown ids
// are skipped; it reports false when none matched.
func (s *Store) MoveBlocks(positions map[string]geometry.Point) bool {
	return s.update(func() bool {
		matched := false
		for id := range positions {
			if _, ok := s.blocks[id]; ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
		s.record()
		for id, p := range positions {
			cur, ok := s.blocks[id]
			if !ok {
				continue
			}
			next := cur.Clone()
			next.X = math.Round(p.X)
			next.Y = math.Round(p.Y)
			s.blocks[id] = next
		}
		return true
	})
}

// SetBlockSize sets width and/or height, each clamped to at least 1. A nil
// dimension is left as is.
func (s *Store) SetBlockSize(id string, width, height *float64) bool {
	return s.MutateBlock(id, func(b *domain.Block) {
		if width != nil {
			b.Width = math.Max(1, *width)
		}
		if height != nil {
			b.Height = math.Max(1, *height)
		}
	})
}
