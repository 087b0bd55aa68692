package geometry

import (
	"math"

	"canvas/internal/domain"
)

// ExportPadding pads selection bounds handed to export logic.
const ExportPadding = 20

// BoxOf returns the unrotated box a block occupies: the derived visual box for
// arrows and the stored x/y/width/height for everything else.
func BoxOf(b *domain.Block) Rect {
	if a, ok := b.AsArrow(); ok {
		ab := BoundsOfArrow(a)
		return Rect{X: b.X + ab.Offset.X, Y: b.Y + ab.Offset.Y, Width: ab.Width, Height: ab.Height}
	}
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// LocalTransform maps the block's centred local frame to canvas space: scale
// by |scale·flip|, rotate about the centre, translate to the box centre.
func LocalTransform(b *domain.Block) Affine {
	box := BoxOf(b)
	fx, fy := b.FlipSigns()
	c := box.Center()
	return Compose(
		Scale(math.Abs(b.ScaleX*fx), math.Abs(b.ScaleY*fy)),
		Rotate(b.Rotation),
		Translate(c.X, c.Y),
	)
}

// QuadOf returns the block's effective on-canvas quadrilateral.
func QuadOf(b *domain.Block) Quad {
	box := BoxOf(b)
	hw, hh := box.Width/2, box.Height/2
	t := LocalTransform(b)
	return Quad{
		t.Apply(Point{X: -hw, Y: -hh}),
		t.Apply(Point{X: hw, Y: -hh}),
		t.Apply(Point{X: hw, Y: hh}),
		t.Apply(Point{X: -hw, Y: hh}),
	}
}

// ContainsPoint reports whether p (canvas space) lies inside the block's
// rotated, scaled and flipped quad.
func ContainsPoint(b *domain.Block, p Point) bool {
	box := BoxOf(b)
	inv, err := LocalTransform(b).Inverse()
	if err != nil {
		return false
	}
	local := inv.Apply(p)
	const eps = 1e-9
	return math.Abs(local.X) <= box.Width/2+eps && math.Abs(local.Y) <= box.Height/2+eps
}

// UnionBounds returns the union of every block's rotated corners.
// It returns false when blocks is empty.
func UnionBounds(blocks []*domain.Block) (Rect, bool) {
	pts := make([]Point, 0, len(blocks)*4)
	for _, b := range blocks {
		q := QuadOf(b)
		pts = append(pts, q[:]...)
	}
	return BoundsOfPoints(pts)
}
