package geometry

import (
	"math"

	"canvas/internal/domain"
)

// ArrowBounds is the derived box of an arrow block.
type ArrowBounds struct {
	Width  float64
	Height float64
	// Offset translates the block position to the top-left of the padded box.
	Offset Point
	// Points are the endpoints relative to the padded box origin.
	Points [4]float64
	// Tip is the arrowhead tip relative to the padded box origin.
	Tip Point
	// Horizontal is true when |dx| > |dy|.
	Horizontal bool
}

// ComputeArrowBounds derives the box enclosing the stem, the arrowhead and the
// stroke. The arrowhead extends pointerLength past the second endpoint along the
// direction of travel; the box is padded perpendicular to that direction by
// max(pointerWidth, strokeWidth)/2 on each side.
func ComputeArrowBounds(points [4]float64, pointerLength, pointerWidth, strokeWidth float64) ArrowBounds {
	dx := points[2] - points[0]
	dy := points[3] - points[1]
	length := math.Hypot(dx, dy)
	horizontal := math.Abs(dx) > math.Abs(dy)

	dirX, dirY := 1.0, 0.0
	if length > 0 {
		dirX, dirY = dx/length, dy/length
	}

	tipX := points[2] + dirX*pointerLength
	tipY := points[3] + dirY*pointerLength

	minX := math.Min(math.Min(points[0], points[2]), tipX)
	maxX := math.Max(math.Max(points[0], points[2]), tipX)
	minY := math.Min(math.Min(points[1], points[3]), tipY)
	maxY := math.Max(math.Max(points[1], points[3]), tipY)

	pad := math.Max(pointerWidth, strokeWidth) / 2
	padX, padY := 0.0, pad
	if !horizontal {
		padX, padY = pad, 0
	}

	originX := minX - padX
	originY := minY - padY

	return ArrowBounds{
		Width:  math.Max(1, maxX-minX+2*padX),
		Height: math.Max(1, maxY-minY+2*padY),
		Offset: Point{X: originX, Y: originY},
		Points: [4]float64{
			points[0] - originX,
			points[1] - originY,
			points[2] - originX,
			points[3] - originY,
		},
		Tip:        Point{X: tipX - originX, Y: tipY - originY},
		Horizontal: horizontal,
	}
}

// BoundsOfArrow derives the box for an arrow payload.
func BoundsOfArrow(a *domain.Arrow) ArrowBounds {
	return ComputeArrowBounds(a.Points, a.PointerLength, a.PointerWidth, a.StrokeWidth)
}

// BlockToGroup converts a stored block position to the visual box origin.
func BlockToGroup(pos Point, a *domain.Arrow) Point {
	return pos.Add(BoundsOfArrow(a).Offset)
}

// GroupToBlock converts a visual box origin back to the stored block position.
func GroupToBlock(group Point, a *domain.Arrow) Point {
	return group.Sub(BoundsOfArrow(a).Offset)
}

// ScaleArrowPoints scales the stem about the start point.
func ScaleArrowPoints(points [4]float64, scale float64) [4]float64 {
	dx := (points[2] - points[0]) * scale
	dy := (points[3] - points[1]) * scale
	return [4]float64{points[0], points[1], points[0] + dx, points[1] + dy}
}

// ArrowResize is the outcome of resizing an arrow's box.
type ArrowResize struct {
	Points [4]float64
	Bounds ArrowBounds
}

// ResizeArrow rescales the stem by the ratio of box diagonals, keeping the
// arrowhead dimensions unchanged. oldW/oldH are the derived box size before
// the resize.
func ResizeArrow(a *domain.Arrow, oldW, oldH, newW, newH float64) ArrowResize {
	oldDiag := math.Hypot(oldW, oldH)
	scale := 1.0
	if oldDiag > 0 {
		scale = math.Hypot(newW, newH) / oldDiag
	}
	pts := ScaleArrowPoints(a.Points, scale)
	return ArrowResize{
		Points: pts,
		Bounds: ComputeArrowBounds(pts, a.PointerLength, a.PointerWidth, a.StrokeWidth),
	}
}
