package gesture

import (
	"strings"

	"canvas/internal/editor"
	"canvas/internal/selection"
)

// modeKeys maps unmodified single keys to the mode they switch to.
var modeKeys = map[string]editor.Mode{
	"v": editor.ModeSelect,
	"f": editor.ModeFrame,
	"t": editor.ModeText,
	"a": editor.ModeArrow,
	"d": editor.ModeDraw,
	"h": editor.ModeHTML,
}

func (c *Controller) keyDown(e KeyDown) {
	key := strings.ToLower(e.Key)

	if c.state == TextEditing {
		switch {
		case key == "escape":
			c.cancelText()
		case key == "enter" && !e.Mods.Shift:
			c.commitText()
		}
		return
	}
	if key == "escape" {
		c.cancel()
		return
	}
	if e.Editable || c.store.Canvas().IsTextEditing {
		return
	}

	if e.Mods.Command() {
		c.commandKey(key, e.Mods)
		return
	}

	if key == "space" || key == " " {
		if e.Mods.Alt {
			return
		}
		if !c.spaceHeld {
			c.spaceHeld = true
			c.spaceMode = c.store.Canvas().Mode
			c.store.SetMode(editor.ModeMove)
		}
		return
	}
	if e.Mods.Alt {
		return
	}

	if mode, ok := modeKeys[key]; ok {
		c.store.SetMode(mode)
		return
	}
	if key == "backspace" || key == "delete" {
		c.store.DeleteSelectedBlocks()
	}
}

func (c *Controller) commandKey(key string, mods Modifiers) {
	switch key {
	case "a":
		if ids := selection.AllVisible(c.store.Blocks()); len(ids) > 0 {
			c.store.SetSelectedIDs(ids)
		}
	case "c":
		c.store.CopySelectedBlocks()
	case "v":
		if c.hasPointer {
			p := c.pointer
			c.store.PasteBlocks(&p)
		} else {
			c.store.PasteBlocks(nil)
		}
	case "z":
		if mods.Shift {
			c.store.Redo()
		} else {
			c.store.Undo()
		}
	case "y":
		c.store.Redo()
	case "d":
		if ids := c.store.SelectedIDs(); len(ids) == 1 {
			c.store.DuplicateBlock(ids[0])
		}
	}
}

func (c *Controller) keyUp(e KeyUp) {
	key := strings.ToLower(e.Key)
	if key == "space" || key == " " {
		c.releaseSpace()
	}
}

// releaseSpace restores the mode that was active before space was held.
func (c *Controller) releaseSpace() {
	if !c.spaceHeld {
		return
	}
	c.spaceHeld = false
	prev := c.spaceMode
	c.spaceMode = ""
	if c.state == Panning {
		c.setState(Idle)
	}
	if prev != "" && c.store.Canvas().Mode != prev {
		c.store.SetMode(prev)
	}
}

// blur restores a space-held mode and commits any text edit.
func (c *Controller) blur() {
	c.releaseSpace()
	if c.state == TextEditing {
		c.commitText()
	}
}
