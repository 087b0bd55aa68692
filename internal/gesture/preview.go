package gesture

import (
	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// Preview is the transient, uncommitted feedback of the active gesture.
type Preview struct {
	State State `json:"state"`

	// Placing: the box the block will get, and for arrows the stem relative
	// to the visual box.
	Placement   *geometry.Rect `json:"placement,omitempty"`
	ArrowPoints []float64      `json:"arrowPoints,omitempty"`

	// MarqueeSelecting: the rubber band and the ids it currently catches.
	Marquee    *geometry.Rect `json:"marquee,omitempty"`
	MarqueeIDs []string       `json:"marqueeIds,omitempty"`

	// Drawing: the stroke rebased onto its bounds.
	Stroke       []float64      `json:"stroke,omitempty"`
	StrokeBounds *geometry.Rect `json:"strokeBounds,omitempty"`

	// Dragging: visual origins of the moving blocks.
	Positions map[string]geometry.Point `json:"positions,omitempty"`
}

// Preview returns what the active gesture would commit right now. Placement
// uses the same computation as the commit, so preview and result agree.
func (c *Controller) Preview() Preview {
	p := Preview{State: c.state}
	switch c.state {
	case Placing:
		if !c.placeMoved {
			break
		}
		t, ok := c.store.Canvas().Mode.PlacedType()
		if !ok {
			break
		}
		if t == domain.BlockTypeArrow {
			_, ab := geometry.ArrowPlacement(c.placeStart, c.placeCurrent, c.isPlacementDrag())
			origin := c.placeStart.Add(ab.Offset)
			p.Placement = &geometry.Rect{X: origin.X, Y: origin.Y, Width: ab.Width, Height: ab.Height}
			p.ArrowPoints = ab.Points[:]
			break
		}
		var img *geometry.ImageSize
		if pending, ok := c.store.PendingImage(); ok && t == domain.BlockTypeImage {
			img = &pending.Size
		}
		r := geometry.Placement(c.placeStart, c.placeCurrent, t, c.isPlacementDrag(), img, c.store.MaxImageDimension())
		p.Placement = &r
	case MarqueeSelecting:
		r := c.marquee.Rect()
		p.Marquee = &r
		p.MarqueeIDs = append([]string(nil), c.preview...)
	case Drawing:
		if len(c.stroke) >= 2 {
			r, rebased := geometry.StrokeBounds(c.stroke)
			p.Stroke = rebased
			p.StrokeBounds = &r
		}
	case Dragging:
		p.Positions = make(map[string]geometry.Point, len(c.dragOrigins))
		for id, origin := range c.dragOrigins {
			p.Positions[id] = origin.Add(c.dragDelta)
		}
	}
	return p
}
