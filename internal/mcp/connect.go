package mcpserver

import (
	"math"

	"canvas/internal/geometry"
)

const defaultConnectGap = 8.0

// connection is a straight arrow stem between two boxes.
type connection struct {
	start, end       geometry.Point
	srcSide, dstSide string
}

// connectBoxes picks the facing sides of src and dst from the offset between
// their centres and joins the side midpoints, backed off by gap.
func connectBoxes(src, dst geometry.Rect, gap float64) connection {
	sc, dc := src.Center(), dst.Center()
	dx, dy := dc.X-sc.X, dc.Y-sc.Y

	var c connection
	if math.Abs(dy) > math.Abs(dx) {
		// Vertical: bottom→top or top→bottom
		if dy > 0 {
			c.srcSide, c.dstSide = "bottom", "top"
		} else {
			c.srcSide, c.dstSide = "top", "bottom"
		}
	} else {
		if dx > 0 {
			c.srcSide, c.dstSide = "right", "left"
		} else {
			c.srcSide, c.dstSide = "left", "right"
		}
	}
	c.start = anchorPoint(src, c.srcSide, gap)
	c.end = anchorPoint(dst, c.dstSide, gap)
	return c
}

// anchorPoint is the midpoint of a side of r, pushed outwards by gap.
func anchorPoint(r geometry.Rect, side string, gap float64) geometry.Point {
	switch side {
	case "top":
		return geometry.Point{X: r.X + r.Width/2, Y: r.Y - gap}
	case "bottom":
		return geometry.Point{X: r.X + r.Width/2, Y: r.MaxY() + gap}
	case "left":
		return geometry.Point{X: r.X - gap, Y: r.Y + r.Height/2}
	case "right":
		return geometry.Point{X: r.MaxX() + gap, Y: r.Y + r.Height/2}
	}
	return r.Center()
}
