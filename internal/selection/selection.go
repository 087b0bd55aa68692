// Package selection implements hit-testing and selection rules: marquee
// intersection, point picking, click/shift-click updates and export bounds.
package selection

import (
	"slices"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// Marquee is a rubber-band rectangle dragged from Start to Current in canvas
// space.
type Marquee struct {
	Start   geometry.Point
	Current geometry.Point
}

// Rect returns the normalised marquee rectangle.
func (m Marquee) Rect() geometry.Rect {
	return geometry.RectFromPoints(m.Start, m.Current)
}

// Preview returns the ids the marquee would select right now.
func (m Marquee) Preview(blocks []*domain.Block) []string {
	return IntersectingIDs(blocks, m.Rect())
}

// IntersectingIDs returns, in z-order, the visible blocks whose axis-aligned
// box touches r. Rotation is ignored; arrows use their derived visual box.
func IntersectingIDs(blocks []*domain.Block, r geometry.Rect) []string {
	var ids []string
	for _, b := range blocks {
		if !b.Visible {
			continue
		}
		if geometry.BoxOf(b).Intersects(r) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// QuadBox is the axis-aligned bounding box of the block's effective quad,
// used for layout and connection anchors.
func QuadBox(b *domain.Block) geometry.Rect {
	return geometry.QuadOf(b).Bounds()
}

// BlockAt returns the topmost visible block containing p. blocks are in
// z-order, bottom first.
func BlockAt(blocks []*domain.Block, p geometry.Point) (*domain.Block, bool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Visible && geometry.ContainsPoint(b, p) {
			return b, true
		}
	}
	return nil, false
}

// Click returns the selection after clicking id. A plain click replaces the
// selection; shift-click adds id and never removes it.
func Click(selected []string, id string, shift bool) []string {
	if !shift {
		return []string{id}
	}
	if slices.Contains(selected, id) {
		return slices.Clone(selected)
	}
	return append(slices.Clone(selected), id)
}

// Merge folds marquee preview ids into the selection on release: an empty
// selection is replaced, a non-empty one gains the new ids.
func Merge(selected, preview []string) []string {
	if len(selected) == 0 {
		return slices.Clone(preview)
	}
	out := slices.Clone(selected)
	for _, id := range preview {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// AllVisible returns the ids of every visible block in z-order.
func AllVisible(blocks []*domain.Block) []string {
	var ids []string
	for _, b := range blocks {
		if b.Visible {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Bounds returns the union of the rotated corners of the blocks in ids,
// padded by the export padding on every side, or nil when none match.
func Bounds(blocks []*domain.Block, ids []string) *geometry.Rect {
	var picked []*domain.Block
	for _, b := range blocks {
		if slices.Contains(ids, b.ID) {
			picked = append(picked, b)
		}
	}
	r, ok := geometry.UnionBounds(picked)
	if !ok {
		return nil
	}
	padded := r.Pad(geometry.ExportPadding)
	return &padded
}
