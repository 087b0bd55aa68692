package mcpserver

import (
	"math"

	"canvas/internal/domain"
	"canvas/internal/geometry"
	"canvas/internal/selection"
)

const (
	GridSize = 20.0
	Padding  = 40.0 // 2 grid cells between blocks
)

// LayoutEngine places tool-created blocks on the canvas so they don't
// overlap existing ones. Boxes are the visual boxes of the blocks, so
// rotated blocks and arrows are accounted for.
type LayoutEngine struct {
	gridSize float64
	padding  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the first grid position, scanning rows top to bottom,
// where a box of size (newW, newH) fits within maxRowW without touching the
// padded box of any existing block.
func (le *LayoutEngine) NextPosition(existing []*domain.Block, newW, newH, maxRowW float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	occupied := make([]geometry.Rect, len(existing))
	bottom := 0.0
	for i, b := range existing {
		occupied[i] = selection.QuadBox(b).Pad(le.padding)
		bottom = max(bottom, occupied[i].MaxY())
	}

	candidate := geometry.Rect{Width: newW, Height: newH}
	for y := 0.0; y <= bottom; y += le.gridSize {
		for x := 0.0; x == 0 || x+newW <= maxRowW; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			free := true
			for _, occ := range occupied {
				if candidate.Intersects(occ) {
					free = false
					break
				}
			}
			if free {
				return candidate.X, candidate.Y
			}
		}
	}

	// Below everything.
	return 0, le.snap(bottom + le.gridSize)
}

// ArrangeGroup lays blocks out in rows starting at (startX, startY), wrapping
// when a row would exceed maxRowW. It returns the new stored position of
// every block; the blocks themselves are not modified.
func (le *LayoutEngine) ArrangeGroup(blocks []*domain.Block, startX, startY, maxRowW float64) map[string]geometry.Point {
	positions := make(map[string]geometry.Point, len(blocks))
	left := le.snap(startX)
	x, y := left, le.snap(startY)
	rowHeight := 0.0

	for _, b := range blocks {
		box := selection.QuadBox(b)
		if x > left && x+box.Width > maxRowW {
			x = left
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}

		// Move the visual box; the stored position keeps its offset from it.
		positions[b.ID] = geometry.Point{X: b.X + x - box.X, Y: b.Y + y - box.Y}

		rowHeight = max(rowHeight, box.Height)
		x += le.snap(box.Width + le.padding)
	}

	return positions
}
