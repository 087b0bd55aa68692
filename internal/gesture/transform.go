package gesture

import (
	"math"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// transformEnd folds each node's scale into the stored block. Text keeps
// scale 1 and takes the scaled box; arrows rescale only the stem; freehand
// strokes scale their points; everything else takes the scaled box.
func (c *Controller) transformEnd(e TransformEnd) {
	defer c.setState(Idle)
	for _, n := range e.Nodes {
		sx, sy := n.ScaleX, n.ScaleY
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		w := math.Max(1, n.Width*sx)
		h := math.Max(1, n.Height*sy)

		c.store.MutateBlock(n.ID, func(b *domain.Block) {
			b.Rotation = n.Rotation
			switch d := b.Data.(type) {
			case *domain.Text:
				b.X, b.Y = n.X, n.Y
				b.Width, b.Height = w, h
				b.ScaleX, b.ScaleY = 1, 1
			case *domain.Arrow:
				old := geometry.BoundsOfArrow(d)
				res := geometry.ResizeArrow(d, old.Width, old.Height, w, h)
				d.Points = res.Points
				pos := geometry.GroupToBlock(geometry.Point{X: n.X, Y: n.Y}, d)
				b.X, b.Y = pos.X, pos.Y
				b.Width, b.Height = res.Bounds.Width, res.Bounds.Height
			case *domain.Draw:
				for i := range d.Points {
					if i%2 == 0 {
						d.Points[i] *= sx
					} else {
						d.Points[i] *= sy
					}
				}
				b.X, b.Y = n.X, n.Y
				b.Width, b.Height = w, h
				b.ScaleX, b.ScaleY = 1, 1
			default:
				b.X, b.Y = n.X, n.Y
				b.Width, b.Height = w, h
			}
		})
	}
}
