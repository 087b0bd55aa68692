package gesture

import (
	"fmt"

	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/geometry"
)

func (c *Controller) nextLabel(t domain.BlockType) string {
	return fmt.Sprintf("%s %d", t.Title(), len(c.store.Order())+1)
}

// isPlacementDrag reports whether the pointer travelled far enough to size the
// block by the drag instead of using the default size.
func (c *Controller) isPlacementDrag() bool {
	return c.placeCurrent.Distance(c.placeStart) > dragThreshold
}

// commitPlacement adds the block the placement gesture describes and returns
// to select mode. The new block ends up selected.
func (c *Controller) commitPlacement() {
	defer func() {
		c.placeStart, c.placeCurrent, c.placeMoved = geometry.Point{}, geometry.Point{}, false
		c.setState(Idle)
	}()

	mode := c.store.Canvas().Mode
	t, ok := mode.PlacedType()
	if !ok {
		return
	}
	b := c.placedBlock(t)
	if b == nil {
		return
	}
	c.store.SetMode(editor.ModeSelect)
	if _, err := c.store.AddBlock(b); err != nil {
		c.logger.Warn("placement rejected", "type", t, "err", err)
		return
	}
	if t == domain.BlockTypeImage {
		c.store.SetPendingImage(nil)
	}
}

// placedBlock builds the block for the current placement, or nil when the
// mode cannot place one (an image mode without a pending image).
func (c *Controller) placedBlock(t domain.BlockType) *domain.Block {
	isDrag := c.isPlacementDrag()
	label := c.nextLabel(t)

	if t == domain.BlockTypeArrow {
		pts, ab := geometry.ArrowPlacement(c.placeStart, c.placeCurrent, isDrag)
		return domain.NewArrowBlock(label, c.placeStart.X, c.placeStart.Y, pts, ab.Width, ab.Height)
	}

	var img *geometry.ImageSize
	var url string
	if t == domain.BlockTypeImage {
		pending, ok := c.store.PendingImage()
		if !ok {
			return nil
		}
		img = &pending.Size
		url = pending.URL
	}
	r := geometry.Placement(c.placeStart, c.placeCurrent, t, isDrag, img, c.store.MaxImageDimension())

	switch t {
	case domain.BlockTypeText:
		return domain.NewTextBlock(label, r.X, r.Y, r.Width, r.Height)
	case domain.BlockTypeFrame:
		return domain.NewFrameBlock(label, r.X, r.Y, r.Width, r.Height)
	case domain.BlockTypeHTML:
		return domain.NewHTMLBlock(label, "", r.X, r.Y, r.Width, r.Height)
	case domain.BlockTypeImage:
		return domain.NewImageBlock(label, url, r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// finishStroke commits the freehand stroke as a draw block rebased onto its
// bounding box. Strokes shorter than two points are dropped.
func (c *Controller) finishStroke() {
	points := c.stroke
	c.stroke = nil
	c.setState(Idle)
	if len(points) < 4 {
		return
	}
	r, rebased := geometry.StrokeBounds(points)
	b := domain.NewDrawBlock(c.nextLabel(domain.BlockTypeDraw), r.X, r.Y, r.Width, r.Height, rebased)
	if _, err := c.store.AddBlock(b); err != nil {
		c.logger.Warn("stroke rejected", "err", err)
	}
}
