package gesture

import (
	"slices"

	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// dragBegin starts moving a block. The block joins (or becomes) the selection
// and every selected block moves with it. With alt held the drag copies: the
// positions captured here are where the originals stay.
func (c *Controller) dragBegin(e DragStart) {
	if !c.selectable(e.ID) {
		return
	}
	c.store.SetHoveredID(e.ID)
	selected := c.store.SelectedIDs()
	if !slices.Contains(selected, e.ID) {
		selected = []string{e.ID}
		c.store.SetSelectedIDs(selected)
	}

	c.dragOrigins = make(map[string]geometry.Point, len(selected))
	c.dragOrder = c.dragOrder[:0]
	for _, b := range c.store.Blocks() {
		if slices.Contains(selected, b.ID) {
			c.dragOrigins[b.ID] = visualOrigin(b)
			c.dragOrder = append(c.dragOrder, b.ID)
		}
	}
	c.altDrag = e.Mods.Alt
	c.dragStart = c.toCanvas(e.Screen)
	c.dragDelta = geometry.Point{}
	c.setState(Dragging)
}

// visualOrigin is the origin the block is drawn from: the derived visual box
// for arrows, the stored position otherwise.
func visualOrigin(b *domain.Block) geometry.Point {
	pos := geometry.Point{X: b.X, Y: b.Y}
	if a, ok := b.AsArrow(); ok {
		return geometry.BlockToGroup(pos, a)
	}
	return pos
}

// storedPosition converts a visual origin back to the stored block position.
func storedPosition(b *domain.Block, visual geometry.Point) geometry.Point {
	if a, ok := b.AsArrow(); ok {
		return geometry.GroupToBlock(visual, a)
	}
	return visual
}

func (c *Controller) dragFinish(e DragEnd) {
	if c.state != Dragging {
		return
	}
	c.dragDelta = c.toCanvas(e.Screen).Sub(c.dragStart)
	delta := c.dragDelta
	defer func() {
		c.resetDrag()
		c.setState(Idle)
	}()
	if delta == (geometry.Point{}) {
		return
	}

	if c.altDrag {
		c.store.DuplicateBlocks(c.dragOrder, delta.X, delta.Y)
		return
	}
	positions := make(map[string]geometry.Point, len(c.dragOrigins))
	for _, id := range c.dragOrder {
		b, ok := c.store.Block(id)
		if !ok {
			continue
		}
		positions[id] = storedPosition(b, c.dragOrigins[id].Add(delta))
	}
	c.store.MoveBlocks(positions)
}

func (c *Controller) resetDrag() {
	c.dragOrigins = nil
	c.dragOrder = nil
	c.dragDelta = geometry.Point{}
	c.altDrag = false
}
