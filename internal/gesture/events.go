package gesture

import "canvas/internal/geometry"

// Modifiers is the modifier-key state carried by input events.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
	Meta  bool
}

// Command reports whether the platform command key (Cmd or Ctrl) is held.
func (m Modifiers) Command() bool {
	return m.Ctrl || m.Meta
}

// Event is any input the controller understands.
type Event interface {
	event()
}

// PointerDown is a press on the stage. Target is the id of the block under
// the pointer, or "" for empty canvas.
type PointerDown struct {
	Screen geometry.Point
	Target string
	Mods   Modifiers
}

type PointerMove struct {
	Screen geometry.Point
}

type PointerUp struct {
	Screen geometry.Point
}

// NodeClick is a click on a block that did not turn into a drag.
type NodeClick struct {
	ID   string
	Mods Modifiers
}

type NodeDoubleClick struct {
	ID string
}

// DragStart begins moving a block; following PointerMove events update the
// preview until DragEnd.
type DragStart struct {
	ID     string
	Screen geometry.Point
	Mods   Modifiers
}

type DragEnd struct {
	Screen geometry.Point
}

type TransformStart struct {
	IDs []string
}

// NodeTransform is the transformer's report for one node. X/Y is the node
// origin (the visual box origin for arrows), Width/Height the unscaled node
// size.
type NodeTransform struct {
	ID       string
	X, Y     float64
	Width    float64
	Height   float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

type TransformEnd struct {
	Nodes []NodeTransform
}

// KeyDown is a key press. Key is the lower-cased key name ("a", "space",
// "escape", "enter", "backspace", "delete"). Editable is set while an
// editable control outside the canvas has focus.
type KeyDown struct {
	Key      string
	Mods     Modifiers
	Editable bool
}

type KeyUp struct {
	Key string
}

// Blur is a loss of window focus.
type Blur struct{}

// Wheel scrolls the view, or zooms about the pointer with the command key.
type Wheel struct {
	Screen geometry.Point
	DeltaX float64
	DeltaY float64
	Mods   Modifiers
}

// TextInput replaces the value of the text being edited.
type TextInput struct {
	Value string
}

type TextCommit struct{}

type TextCancel struct{}

func (PointerDown) event()     {}
func (PointerMove) event()     {}
func (PointerUp) event()       {}
func (NodeClick) event()       {}
func (NodeDoubleClick) event() {}
func (DragStart) event()       {}
func (DragEnd) event()         {}
func (TransformStart) event()  {}
func (TransformEnd) event()    {}
func (KeyDown) event()         {}
func (KeyUp) event()           {}
func (Blur) event()            {}
func (Wheel) event()           {}
func (TextInput) event()       {}
func (TextCommit) event()      {}
func (TextCancel) event()      {}
