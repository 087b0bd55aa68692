package editor

import "slices"

// reorder moves id from its index to the index returned by target. It is a
// no-op for unknown ids and when target returns the current index.
func (s *Store) reorder(id string, target func(idx, last int) int) bool {
	return s.update(func() bool {
		idx := s.indexOfLocked(id)
		if idx < 0 {
			return false
		}
		to := target(idx, len(s.order)-1)
		if to == idx || to < 0 || to >= len(s.order) {
			return false
		}
		s.record()
		next := slices.Delete(slices.Clone(s.order), idx, idx+1)
		s.order = slices.Insert(next, to, id)
		return true
	})
}

// BringForward swaps the block with the one directly above it.
func (s *Store) BringForward(id string) bool {
	return s.reorder(id, func(idx, last int) int { return min(idx+1, last) })
}

// BringToTop moves the block to the top of the z-order.
func (s *Store) BringToTop(id string) bool {
	return s.reorder(id, func(_, last int) int { return last })
}

// BringBackward swaps the block with the one directly below it.
func (s *Store) BringBackward(id string) bool {
	return s.reorder(id, func(idx, _ int) int { return max(idx-1, 0) })
}

// BringToBack moves the block to the bottom of the z-order.
func (s *Store) BringToBack(id string) bool {
	return s.reorder(id, func(int, int) int { return 0 })
}
