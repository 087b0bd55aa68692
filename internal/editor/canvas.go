package editor

import (
	"slices"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// ── history-producing canvas actions ────────────────────────

// LoadTemplate replaces blocks, size and background with t. Every block is
// validated and ids must be unique; on error the store is unchanged. Zoom,
// pan and container size are kept and the stage is re-centred.
func (s *Store) LoadTemplate(t *domain.Template) error {
	if t == nil {
		return domain.NewError(domain.ErrCodeInvalidTemplate, "template is nil")
	}
	next := t.Clone()
	seen := make(map[string]bool, len(next.Blocks))
	for i, b := range next.Blocks {
		if err := domain.Validate(b); err != nil {
			return domain.WrapError(domain.ErrCodeInvalidTemplate, err, "block %d", i)
		}
		normalize(b)
		if seen[b.ID] {
			return &domain.Error{Code: domain.ErrCodeInvalidTemplate, Field: "blocks", Message: "duplicate id " + b.ID}
		}
		seen[b.ID] = true
	}

	s.update(func() bool {
		s.record()
		s.resetFromTemplate(next)
		s.centerLocked()
		s.logger.Info("template loaded", "blocks", len(next.Blocks), "width", next.Size.Width, "height", next.Size.Height)
		return true
	})
	return nil
}

// SizePatch carries the dimensions UpdateCanvasSize should change.
type SizePatch struct {
	Width  *float64
	Height *float64
}

// UpdateCanvasSize changes one or both canvas dimensions and re-centres.
func (s *Store) UpdateCanvasSize(p SizePatch) bool {
	return s.update(func() bool {
		next := s.canvas.Size
		if p.Width != nil {
			next.Width = *p.Width
		}
		if p.Height != nil {
			next.Height = *p.Height
		}
		if next.Width < 0 || next.Height < 0 {
			return false
		}
		s.record()
		s.canvas.Size = next
		s.centerLocked()
		return true
	})
}

// SetCanvasBackground sets the canvas fill. An empty string clears it.
func (s *Store) SetCanvasBackground(bg string) bool {
	return s.update(func() bool {
		s.record()
		s.canvas.Background = bg
		return true
	})
}

// ── non-history setters ─────────────────────────────────────

// SetMode switches the interaction mode, clearing selection and hover.
func (s *Store) SetMode(m Mode) bool {
	if !m.Valid() {
		return false
	}
	return s.update(func() bool {
		if s.canvas.Mode == m {
			return false
		}
		s.canvas.Mode = m
		s.selected = nil
		s.hovered = ""
		return true
	})
}

// SetSelectedIDs replaces the selection. Unknown and repeated ids are dropped.
func (s *Store) SetSelectedIDs(ids []string) bool {
	return s.update(func() bool {
		next := make([]string, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if _, ok := s.blocks[id]; ok && !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		if slices.Equal(next, s.selected) {
			return false
		}
		s.selected = next
		return true
	})
}

// SetHoveredID sets or clears ("") the hovered block.
func (s *Store) SetHoveredID(id string) bool {
	return s.update(func() bool {
		if s.hovered == id {
			return false
		}
		if _, ok := s.blocks[id]; !ok && id != "" {
			return false
		}
		s.hovered = id
		return true
	})
}

func (s *Store) SetIsTextEditing(v bool) bool {
	return s.update(func() bool {
		if s.canvas.IsTextEditing == v {
			return false
		}
		s.canvas.IsTextEditing = v
		return true
	})
}

// SetZoom sets the zoom factor without moving the pan offset.
func (s *Store) SetZoom(zoom float64) bool {
	if zoom <= 0 {
		return false
	}
	return s.update(func() bool {
		if s.canvas.Zoom == zoom {
			return false
		}
		s.canvas.Zoom = zoom
		return true
	})
}

// SetStagePosition sets the pan offset. The stage then counts as centred so
// later container resizes leave it alone.
func (s *Store) SetStagePosition(p geometry.Point) bool {
	return s.update(func() bool {
		if s.canvas.StagePosition == p {
			if s.canvas.HasCentered {
				return false
			}
			s.canvas.HasCentered = true
			return true
		}
		s.canvas.StagePosition = p
		s.canvas.HasCentered = true
		return true
	})
}

// SetContainerSize records the on-screen container size. The first time both
// sizes are known the stage is centred.
func (s *Store) SetContainerSize(size domain.Size) bool {
	return s.update(func() bool {
		if s.canvas.ContainerSize == size {
			return false
		}
		s.canvas.ContainerSize = size
		if !s.canvas.HasCentered {
			s.centerLocked()
		}
		return true
	})
}

// CenterStage re-centres the canvas in the container.
func (s *Store) CenterStage() bool {
	return s.update(func() bool {
		pos, ok := geometry.CenterStage(s.canvas.Size, s.canvas.ContainerSize, s.canvas.Zoom)
		if !ok || (pos == s.canvas.StagePosition && s.canvas.HasCentered) {
			return false
		}
		s.canvas.StagePosition = pos
		s.canvas.HasCentered = true
		return true
	})
}

// SetPendingImage stores (or clears with nil) the image the image mode places.
func (s *Store) SetPendingImage(img *PendingImage) {
	s.update(func() bool {
		if img == nil {
			s.pending = nil
		} else {
			p := *img
			s.pending = &p
		}
		return true
	})
}

// PendingImage returns the image waiting for placement, if any.
func (s *Store) PendingImage() (PendingImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return PendingImage{}, false
	}
	return *s.pending, true
}

// ── zoom ────────────────────────────────────────────────────

// ZoomAt multiplies the zoom by factor, keeping the canvas point under the
// screen anchor fixed.
func (s *Store) ZoomAt(anchor geometry.Point, factor float64) bool {
	if factor <= 0 {
		return false
	}
	return s.update(func() bool {
		v := s.canvas.Viewport()
		next := v.ZoomAt(anchor, v.Zoom*factor)
		if next == v {
			return false
		}
		s.canvas.Zoom = next.Zoom
		s.canvas.StagePosition = next.Pan
		s.canvas.HasCentered = true
		return true
	})
}

func (s *Store) ZoomIn(anchor geometry.Point) bool {
	return s.ZoomAt(anchor, geometry.ZoomStep)
}

func (s *Store) ZoomOut(anchor geometry.Point) bool {
	return s.ZoomAt(anchor, 1/geometry.ZoomStep)
}

// ResetZoom fits the canvas into the container and centres it.
func (s *Store) ResetZoom() bool {
	return s.update(func() bool {
		s.canvas.Zoom = geometry.DefaultZoom(s.canvas.Size, s.canvas.ContainerSize)
		s.centerLocked()
		return true
	})
}
