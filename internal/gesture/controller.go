// Package gesture turns raw pointer and keyboard input into Block Store
// actions through an explicit state machine. Transient gesture data lives in
// the controller and reaches the store only when a gesture completes.
package gesture

import (
	"io"

	"github.com/charmbracelet/log"

	"canvas/internal/editor"
	"canvas/internal/geometry"
	"canvas/internal/selection"
)

// State is the controller's current gesture.
type State int

const (
	Idle State = iota
	Panning
	Placing
	MarqueeSelecting
	Dragging
	Transforming
	Drawing
	TextEditing
)

var stateNames = [...]string{"idle", "panning", "placing", "marquee", "dragging", "transforming", "drawing", "text-editing"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Placement thresholds in canvas units.
const (
	moveThreshold = 2
	dragThreshold = 5
)

// Controller is the gesture state machine bound to one store. It is not safe
// for concurrent use; feed it from a single event loop.
type Controller struct {
	store  *editor.Store
	logger *log.Logger
	state  State

	pointer    geometry.Point
	hasPointer bool

	// panning
	panOrigin geometry.Point
	panStage  geometry.Point

	// placing
	placeStart   geometry.Point
	placeCurrent geometry.Point
	placeMoved   bool

	// marquee
	marquee selection.Marquee
	preview []string

	// drawing
	stroke []float64

	// dragging
	dragStart   geometry.Point
	dragDelta   geometry.Point
	dragOrigins map[string]geometry.Point
	dragOrder   []string
	altDrag     bool

	// text editing
	editID    string
	editValue string

	spaceHeld bool
	spaceMode editor.Mode
}

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an idle controller driving store.
func New(store *editor.Store, opts ...Option) *Controller {
	c := &Controller{store: store, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current gesture state.
func (c *Controller) State() State {
	return c.state
}

// Handle feeds one event through the state machine.
func (c *Controller) Handle(ev Event) {
	switch e := ev.(type) {
	case PointerDown:
		c.pointerDown(e)
	case PointerMove:
		c.pointerMove(e)
	case PointerUp:
		c.pointerUp(e)
	case NodeClick:
		c.nodeClick(e)
	case NodeDoubleClick:
		c.nodeDoubleClick(e)
	case DragStart:
		c.dragBegin(e)
	case DragEnd:
		c.dragFinish(e)
	case TransformStart:
		if c.state == Idle && len(e.IDs) > 0 {
			c.setState(Transforming)
		}
	case TransformEnd:
		c.transformEnd(e)
	case KeyDown:
		c.keyDown(e)
	case KeyUp:
		c.keyUp(e)
	case Blur:
		c.blur()
	case Wheel:
		c.wheel(e)
	case TextInput:
		if c.state == TextEditing {
			c.editValue = e.Value
		}
	case TextCommit:
		c.commitText()
	case TextCancel:
		c.cancelText()
	}
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.logger.Debug("gesture", "from", c.state, "to", s)
	}
	c.state = s
}

// toCanvas converts a screen point through the store's current viewport and
// remembers it as the last known pointer position.
func (c *Controller) toCanvas(screen geometry.Point) geometry.Point {
	p := c.store.Canvas().Viewport().ToCanvas(screen)
	c.pointer = p
	c.hasPointer = true
	return p
}

// ── pointer ─────────────────────────────────────────────────

func (c *Controller) pointerDown(e PointerDown) {
	if c.state != Idle {
		return
	}
	canvas := c.store.Canvas()
	if canvas.IsTextEditing {
		return
	}
	p := c.toCanvas(e.Screen)

	switch mode := canvas.Mode; {
	case mode == editor.ModeMove:
		c.panOrigin = e.Screen
		c.panStage = canvas.StagePosition
		c.setState(Panning)
	case mode == editor.ModeDraw:
		c.stroke = []float64{p.X, p.Y}
		c.store.SetSelectedIDs(nil)
		c.store.SetHoveredID("")
		c.setState(Drawing)
	case mode == editor.ModeSelect:
		if e.Target != "" {
			return
		}
		if !e.Mods.Shift {
			c.store.SetSelectedIDs(nil)
		}
		c.marquee = selection.Marquee{Start: p, Current: p}
		c.preview = nil
		c.setState(MarqueeSelecting)
	default:
		if _, ok := mode.PlacedType(); !ok {
			return
		}
		if mode == editor.ModeImage {
			if _, ok := c.store.PendingImage(); !ok {
				return
			}
		}
		c.placeStart, c.placeCurrent = p, p
		c.placeMoved = false
		c.setState(Placing)
	}
}

func (c *Controller) pointerMove(e PointerMove) {
	switch c.state {
	case Panning:
		c.store.SetStagePosition(c.panStage.Add(e.Screen.Sub(c.panOrigin)))
	case Drawing:
		p := c.toCanvas(e.Screen)
		c.stroke = append(c.stroke, p.X, p.Y)
	case Placing:
		c.placeCurrent = c.toCanvas(e.Screen)
		if c.placeCurrent.Distance(c.placeStart) > moveThreshold {
			c.placeMoved = true
		}
	case MarqueeSelecting:
		c.marquee.Current = c.toCanvas(e.Screen)
		c.preview = c.marquee.Preview(c.store.Blocks())
	case Dragging:
		c.dragDelta = c.toCanvas(e.Screen).Sub(c.dragStart)
	default:
		c.toCanvas(e.Screen)
	}
}

func (c *Controller) pointerUp(e PointerUp) {
	switch c.state {
	case Panning:
		c.store.SetStagePosition(c.panStage.Add(e.Screen.Sub(c.panOrigin)))
		c.setState(Idle)
	case Drawing:
		c.toCanvas(e.Screen)
		c.finishStroke()
	case Placing:
		c.placeCurrent = c.toCanvas(e.Screen)
		c.commitPlacement()
	case MarqueeSelecting:
		c.marquee.Current = c.toCanvas(e.Screen)
		c.finishMarquee(c.marquee.Preview(c.store.Blocks()))
	case Dragging:
		c.dragFinish(DragEnd(e))
	}
}

// finishMarquee folds the caught ids into the selection. Catching nothing
// leaves the selection as the press left it: cleared, unless shift was held.
func (c *Controller) finishMarquee(caught []string) {
	if len(caught) > 0 {
		c.store.SetSelectedIDs(selection.Merge(c.store.SelectedIDs(), caught))
	}
	c.marquee = selection.Marquee{}
	c.preview = nil
	c.setState(Idle)
}

// ── nodes ───────────────────────────────────────────────────

func (c *Controller) selectable(id string) bool {
	if c.state != Idle {
		return false
	}
	canvas := c.store.Canvas()
	if canvas.Mode != editor.ModeSelect || canvas.IsTextEditing {
		return false
	}
	b, ok := c.store.Block(id)
	return ok && b.Visible
}

func (c *Controller) nodeClick(e NodeClick) {
	if !c.selectable(e.ID) {
		return
	}
	c.store.SetHoveredID(e.ID)
	c.store.SetSelectedIDs(selection.Click(c.store.SelectedIDs(), e.ID, e.Mods.Shift))
}

func (c *Controller) nodeDoubleClick(e NodeDoubleClick) {
	if c.state != Idle {
		return
	}
	b, ok := c.store.Block(e.ID)
	if !ok {
		return
	}
	text, ok := b.AsText()
	if !ok {
		c.nodeClick(NodeClick{ID: e.ID})
		return
	}
	c.editID = b.ID
	c.editValue = text.Text
	c.store.SetIsTextEditing(true)
	c.store.SetSelectedIDs([]string{b.ID})
	c.setState(TextEditing)
}

// ── cancel ──────────────────────────────────────────────────

// cancel drops any transient gesture without touching the store.
func (c *Controller) cancel() {
	switch c.state {
	case Placing:
		c.placeStart, c.placeCurrent, c.placeMoved = geometry.Point{}, geometry.Point{}, false
	case Drawing:
		c.stroke = nil
	case MarqueeSelecting:
		c.marquee = selection.Marquee{}
		c.preview = nil
	case Dragging:
		c.resetDrag()
	case TextEditing:
		c.cancelText()
		return
	case Panning, Transforming:
	default:
		return
	}
	c.logger.Debug("gesture cancelled", "state", c.state)
	c.setState(Idle)
}

// ── wheel ───────────────────────────────────────────────────

func (c *Controller) wheel(e Wheel) {
	if e.Mods.Command() {
		if e.DeltaY < 0 {
			c.store.ZoomIn(e.Screen)
		} else if e.DeltaY > 0 {
			c.store.ZoomOut(e.Screen)
		}
		return
	}
	stage := c.store.Canvas().StagePosition
	c.store.SetStagePosition(geometry.Point{X: stage.X - e.DeltaX, Y: stage.Y - e.DeltaY})
}
