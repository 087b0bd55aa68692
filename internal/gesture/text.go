package gesture

import (
	"canvas/internal/domain"
	"canvas/internal/geometry"
)

// commitText writes the edited value back and grows the block to one line
// height per line.
func (c *Controller) commitText() {
	if c.state != TextEditing {
		return
	}
	id, value := c.editID, c.editValue
	c.endText()

	b, ok := c.store.Block(id)
	if !ok {
		return
	}
	text, ok := b.AsText()
	if !ok {
		return
	}
	patch := domain.Patch{
		"text":   value,
		"height": geometry.TextHeight(value, text.LineHeight),
	}
	if _, err := c.store.UpdateBlockValues(id, patch); err != nil {
		c.logger.Warn("text edit rejected", "id", id, "err", err)
	}
}

// cancelText leaves text editing without committing.
func (c *Controller) cancelText() {
	if c.state != TextEditing {
		return
	}
	c.endText()
}

func (c *Controller) endText() {
	c.editID, c.editValue = "", ""
	c.store.SetIsTextEditing(false)
	c.setState(Idle)
}

// EditingText returns the id and current value of the text being edited.
func (c *Controller) EditingText() (id, value string, ok bool) {
	if c.state != TextEditing {
		return "", "", false
	}
	return c.editID, c.editValue, true
}
