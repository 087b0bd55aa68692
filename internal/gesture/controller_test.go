package gesture

import (
	"math"
	"reflect"
	"testing"

	"canvas/internal/domain"
	"canvas/internal/editor"
	"canvas/internal/geometry"
)

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

func setup(t *testing.T, blocks ...*domain.Block) (*editor.Store, *Controller) {
	t.Helper()
	s := editor.New()
	for _, b := range blocks {
		if _, err := s.AddBlock(b); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	s.SetSelectedIDs(nil)
	s.ClearHistory()
	return s, New(s)
}

func frameAt(id string, x, y, w, h float64) *domain.Block {
	b := domain.NewFrameBlock(id, x, y, w, h)
	b.ID = id
	return b
}

func textAt(id string, x, y float64) *domain.Block {
	b := domain.NewTextBlock(id, x, y, 320, 52)
	b.ID = id
	return b
}

func only(t *testing.T, s *editor.Store) *domain.Block {
	t.Helper()
	blocks := s.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("store has %d blocks, want 1", len(blocks))
	}
	return blocks[0]
}

// ── placement ───────────────────────────────────────────────

func TestPlacement_ClickUsesDefaultSize(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeText)

	c.Handle(PointerDown{Screen: pt(100, 100)})
	if c.State() != Placing {
		t.Fatalf("state = %s, want placing", c.State())
	}
	c.Handle(PointerUp{Screen: pt(103, 101)})

	b := only(t, s)
	if b.X != 100 || b.Y != 100 || b.Width != 320 || b.Height != 52 {
		t.Errorf("box = (%v,%v %vx%v), want (100,100 320x52)", b.X, b.Y, b.Width, b.Height)
	}
	if b.Label != "Text 1" {
		t.Errorf("label = %q", b.Label)
	}
	if m := s.Canvas().Mode; m != editor.ModeSelect {
		t.Errorf("mode = %s, want select", m)
	}
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{b.ID}) {
		t.Errorf("selection = %v, want the new block", got)
	}
	if c.State() != Idle {
		t.Errorf("state = %s, want idle", c.State())
	}
}

func TestPlacement_DragMatchesPreview(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeFrame)

	c.Handle(PointerDown{Screen: pt(110, 60)})
	c.Handle(PointerMove{Screen: pt(10, 10)})
	preview := c.Preview()
	if preview.Placement == nil {
		t.Fatal("no placement preview while dragging")
	}
	c.Handle(PointerUp{Screen: pt(10, 10)})

	b := only(t, s)
	got := geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
	want := geometry.Rect{X: 10, Y: 10, Width: 100, Height: 50}
	if got != want {
		t.Errorf("committed %+v, want %+v", got, want)
	}
	if *preview.Placement != got {
		t.Errorf("preview %+v differs from committed %+v", *preview.Placement, got)
	}
}

func TestPlacement_Arrow(t *testing.T) {
	tests := []struct {
		name string
		end  geometry.Point
		want [4]float64
	}{
		{"drag", pt(150, 100), [4]float64{0, 0, 100, 50}},
		{"click", pt(51, 50), domain.DefaultArrowPoints},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c := setup(t)
			s.SetMode(editor.ModeArrow)
			c.Handle(PointerDown{Screen: pt(50, 50)})
			c.Handle(PointerMove{Screen: tt.end})
			c.Handle(PointerUp{Screen: tt.end})

			b := only(t, s)
			a, ok := b.AsArrow()
			if !ok {
				t.Fatalf("type = %s, want arrow", b.Type())
			}
			if b.X != 50 || b.Y != 50 {
				t.Errorf("position = (%v,%v), want (50,50)", b.X, b.Y)
			}
			if a.Points != tt.want {
				t.Errorf("points = %v, want %v", a.Points, tt.want)
			}
			ab := geometry.BoundsOfArrow(a)
			if b.Width != ab.Width || b.Height != ab.Height {
				t.Errorf("size = %vx%v, want derived %vx%v", b.Width, b.Height, ab.Width, ab.Height)
			}
		})
	}
}

func TestPlacement_ImageNeedsPendingImage(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeImage)
	c.Handle(PointerDown{Screen: pt(0, 0)})
	if c.State() != Idle {
		t.Fatalf("image placement started without a pending image")
	}

	s.SetPendingImage(&editor.PendingImage{URL: "https://example.com/cat.png", Size: geometry.ImageSize{Width: 1600, Height: 1200}})
	c.Handle(PointerDown{Screen: pt(5, 5)})
	c.Handle(PointerUp{Screen: pt(5, 5)})

	b := only(t, s)
	img, _ := b.AsImage()
	if b.Width != 800 || b.Height != 600 || img.URL != "https://example.com/cat.png" {
		t.Errorf("image = %vx%v %q", b.Width, b.Height, img.URL)
	}
	if _, ok := s.PendingImage(); ok {
		t.Error("pending image not cleared after placement")
	}
}

func TestPlacement_EscapeCancels(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeFrame)
	c.Handle(PointerDown{Screen: pt(0, 0)})
	c.Handle(PointerMove{Screen: pt(80, 80)})
	c.Handle(KeyDown{Key: "Escape"})
	c.Handle(PointerUp{Screen: pt(80, 80)})

	if n := len(s.Blocks()); n != 0 {
		t.Errorf("escape still committed %d blocks", n)
	}
	if c.State() != Idle {
		t.Errorf("state = %s, want idle", c.State())
	}
}

// ── drawing ─────────────────────────────────────────────────

func TestDrawing_CommitsRebasedStroke(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeDraw)

	c.Handle(PointerDown{Screen: pt(10, 10)})
	c.Handle(PointerMove{Screen: pt(20, 30)})
	c.Handle(PointerMove{Screen: pt(40, 20)})
	if p := c.Preview(); p.StrokeBounds == nil {
		t.Error("no stroke preview while drawing")
	}
	c.Handle(PointerUp{Screen: pt(40, 20)})

	b := only(t, s)
	d, ok := b.AsDraw()
	if !ok {
		t.Fatalf("type = %s, want draw", b.Type())
	}
	if b.X != 10 || b.Y != 10 || b.Width != 30 || b.Height != 20 {
		t.Errorf("box = (%v,%v %vx%v)", b.X, b.Y, b.Width, b.Height)
	}
	if want := []float64{0, 0, 10, 20, 30, 10}; !reflect.DeepEqual(d.Points, want) {
		t.Errorf("points = %v, want %v", d.Points, want)
	}
	if s.Canvas().Mode != editor.ModeDraw {
		t.Errorf("draw mode should stay active")
	}
}

func TestDrawing_SinglePointIsDropped(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeDraw)
	c.Handle(PointerDown{Screen: pt(10, 10)})
	c.Handle(PointerUp{Screen: pt(10, 10)})
	if n := len(s.Blocks()); n != 0 {
		t.Errorf("single-point stroke committed %d blocks", n)
	}
}

func TestDrawing_EscapeDiscardsStroke(t *testing.T) {
	s, c := setup(t, frameAt("a", 500, 500, 10, 10))
	s.SetMode(editor.ModeDraw)

	c.Handle(PointerDown{Screen: pt(10, 10)})
	c.Handle(PointerMove{Screen: pt(40, 30)})
	c.Handle(KeyDown{Key: "Escape"})
	if c.State() != Idle {
		t.Errorf("state = %s, want idle", c.State())
	}
	if p := c.Preview(); p.StrokeBounds != nil {
		t.Error("stroke preview survived escape")
	}
	c.Handle(PointerUp{Screen: pt(40, 30)})

	if got := only(t, s); got.ID != "a" {
		t.Errorf("store holds %s, want only a", got.ID)
	}
	if undo, _ := s.History(); len(undo) != 0 {
		t.Errorf("escape recorded %d history entries", len(undo))
	}
}

// ── marquee ─────────────────────────────────────────────────

func TestMarquee_EscapeKeepsSelection(t *testing.T) {
	s, c := setup(t, frameAt("a", 50, 50, 10, 10), frameAt("b", 300, 300, 10, 10))
	s.SetSelectedIDs([]string{"b"})

	c.Handle(PointerDown{Screen: pt(0, 0), Mods: Modifiers{Shift: true}})
	c.Handle(PointerMove{Screen: pt(100, 100)})
	c.Handle(KeyDown{Key: "escape"})
	if p := c.Preview(); len(p.MarqueeIDs) != 0 {
		t.Errorf("preview ids = %v after escape", p.MarqueeIDs)
	}
	c.Handle(PointerUp{Screen: pt(100, 100)})

	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("selection = %v, want [b]", got)
	}
	if n := len(s.Blocks()); n != 2 {
		t.Errorf("store has %d blocks, want 2", n)
	}
	if c.State() != Idle {
		t.Errorf("state = %s, want idle", c.State())
	}
}

func TestMarquee_SelectsOnRelease(t *testing.T) {
	s, c := setup(t, frameAt("a", 50, 50, 100, 100), frameAt("b", 300, 300, 10, 10))

	c.Handle(PointerDown{Screen: pt(0, 0)})
	c.Handle(PointerMove{Screen: pt(100, 100)})
	if p := c.Preview(); !reflect.DeepEqual(p.MarqueeIDs, []string{"a"}) {
		t.Errorf("preview ids = %v, want [a]", p.MarqueeIDs)
	}
	if len(s.SelectedIDs()) != 0 {
		t.Error("preview leaked into the selection before release")
	}
	c.Handle(PointerUp{Screen: pt(100, 100)})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("selection = %v, want [a]", got)
	}
}

func TestMarquee_ShiftMergesIntoSelection(t *testing.T) {
	s, c := setup(t, frameAt("a", 50, 50, 10, 10), frameAt("b", 300, 300, 10, 10))
	s.SetSelectedIDs([]string{"b"})

	c.Handle(PointerDown{Screen: pt(0, 0), Mods: Modifiers{Shift: true}})
	c.Handle(PointerMove{Screen: pt(100, 100)})
	c.Handle(PointerUp{Screen: pt(100, 100)})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("selection = %v, want [b a]", got)
	}
}

func TestMarquee_ClickOnEmptyCanvasClears(t *testing.T) {
	s, c := setup(t, frameAt("a", 50, 50, 10, 10))
	s.SetSelectedIDs([]string{"a"})
	c.Handle(PointerDown{Screen: pt(500, 500)})
	c.Handle(PointerUp{Screen: pt(500, 500)})
	if got := s.SelectedIDs(); len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
}

// ── clicks ──────────────────────────────────────────────────

func TestNodeClick_ShiftAddsOnly(t *testing.T) {
	s, c := setup(t, frameAt("a", 0, 0, 10, 10), frameAt("b", 20, 0, 10, 10))
	c.Handle(NodeClick{ID: "a"})
	c.Handle(NodeClick{ID: "b", Mods: Modifiers{Shift: true}})
	c.Handle(NodeClick{ID: "a", Mods: Modifiers{Shift: true}})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("selection = %v, want [a b]", got)
	}
	c.Handle(NodeClick{ID: "b"})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("selection = %v, want [b]", got)
	}
}

func TestNodeClick_IgnoresHiddenBlocks(t *testing.T) {
	hidden := frameAt("h", 0, 0, 10, 10)
	hidden.Visible = false
	s, c := setup(t, hidden)
	c.Handle(NodeClick{ID: "h"})
	if got := s.SelectedIDs(); len(got) != 0 {
		t.Errorf("hidden block got selected: %v", got)
	}
}

// ── dragging ────────────────────────────────────────────────

func TestDrag_MovesSelection(t *testing.T) {
	arrow := domain.NewArrowBlock("arrow", 200, 200, [4]float64{0, 0, 200, 0}, 220, 20)
	arrow.ID = "arrow"
	s, c := setup(t, frameAt("a", 10, 10, 50, 50), arrow)
	s.SetSelectedIDs([]string{"a", "arrow"})

	c.Handle(DragStart{ID: "a", Screen: pt(20, 20)})
	c.Handle(PointerMove{Screen: pt(50, 40)})
	if p := c.Preview(); p.Positions["a"] != pt(40, 30) {
		t.Errorf("preview position = %+v, want (40,30)", p.Positions["a"])
	}
	if b, _ := s.Block("a"); b.X != 10 {
		t.Error("drag preview reached the store before release")
	}
	c.Handle(DragEnd{Screen: pt(50, 40)})

	a, _ := s.Block("a")
	if a.X != 40 || a.Y != 30 {
		t.Errorf("a at (%v,%v), want (40,30)", a.X, a.Y)
	}
	moved, _ := s.Block("arrow")
	if moved.X != 230 || moved.Y != 220 {
		t.Errorf("arrow at (%v,%v), want (230,220)", moved.X, moved.Y)
	}
	if depth := s.State().UndoDepth; depth != 1 {
		t.Errorf("drag produced %d history entries, want 1", depth)
	}
}

func TestDrag_UnselectedBlockReplacesSelection(t *testing.T) {
	s, c := setup(t, frameAt("a", 0, 0, 10, 10), frameAt("b", 50, 50, 10, 10))
	s.SetSelectedIDs([]string{"a"})
	c.Handle(DragStart{ID: "b", Screen: pt(55, 55)})
	c.Handle(DragEnd{Screen: pt(65, 55)})

	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("selection = %v, want [b]", got)
	}
	if a, _ := s.Block("a"); a.X != 0 {
		t.Errorf("unselected block moved to %v", a.X)
	}
	if b, _ := s.Block("b"); b.X != 60 {
		t.Errorf("b.X = %v, want 60", b.X)
	}
}

func TestDrag_AltCopiesAndRestoresOriginals(t *testing.T) {
	s, c := setup(t, frameAt("a", 10, 10, 50, 50), frameAt("b", 100, 10, 50, 50))
	s.SetSelectedIDs([]string{"a", "b"})

	c.Handle(DragStart{ID: "a", Screen: pt(20, 20), Mods: Modifiers{Alt: true}})
	c.Handle(PointerMove{Screen: pt(60, 80)})
	c.Handle(DragEnd{Screen: pt(60, 80)})

	for id, want := range map[string]geometry.Point{"a": pt(10, 10), "b": pt(100, 10)} {
		b, _ := s.Block(id)
		if b.X != want.X || b.Y != want.Y {
			t.Errorf("original %s at (%v,%v), want %+v", id, b.X, b.Y, want)
		}
	}
	clones := s.SelectedIDs()
	if len(clones) != 2 {
		t.Fatalf("selection = %v, want two clones", clones)
	}
	first, _ := s.Block(clones[0])
	second, _ := s.Block(clones[1])
	if first.X != 50 || first.Y != 70 || second.X != 140 || second.Y != 70 {
		t.Errorf("clones at (%v,%v) and (%v,%v)", first.X, first.Y, second.X, second.Y)
	}
	if first.Label != "a Copy" {
		t.Errorf("clone label = %q", first.Label)
	}
}

func TestDrag_EscapeLeavesStoreUntouched(t *testing.T) {
	s, c := setup(t, frameAt("a", 10, 10, 50, 50))
	c.Handle(DragStart{ID: "a", Screen: pt(20, 20)})
	c.Handle(PointerMove{Screen: pt(90, 90)})
	c.Handle(KeyDown{Key: "escape"})
	c.Handle(DragEnd{Screen: pt(90, 90)})

	if b, _ := s.Block("a"); b.X != 10 || b.Y != 10 {
		t.Errorf("block moved to (%v,%v) after escape", b.X, b.Y)
	}
	if s.State().UndoDepth != 0 {
		t.Error("cancelled drag pushed history")
	}
}

// ── transform ───────────────────────────────────────────────

func TestTransformEnd(t *testing.T) {
	draw := domain.NewDrawBlock("d", 0, 0, 10, 20, []float64{0, 0, 10, 20})
	draw.ID = "d"
	arrow := domain.NewArrowBlock("arrow", 0, 300, [4]float64{0, 0, 200, 0}, 220, 20)
	arrow.ID = "arrow"
	s, c := setup(t, textAt("t", 0, 0), frameAt("f", 0, 100, 100, 50), draw, arrow)

	c.Handle(TransformStart{IDs: []string{"t"}})
	if c.State() != Transforming {
		t.Fatalf("state = %s, want transforming", c.State())
	}
	c.Handle(TransformEnd{Nodes: []NodeTransform{
		{ID: "t", X: 5, Y: 6, Width: 320, Height: 52, ScaleX: 0.5, ScaleY: 2, Rotation: 15},
		{ID: "f", X: 1, Y: 100, Width: 100, Height: 50, ScaleX: 2, ScaleY: 0, Rotation: 0},
		{ID: "d", X: 0, Y: 0, Width: 10, Height: 20, ScaleX: 3, ScaleY: 0.5},
		{ID: "arrow", X: 0, Y: 290, Width: 220, Height: 20, ScaleX: 2, ScaleY: 2},
	}})
	if c.State() != Idle {
		t.Errorf("state = %s, want idle", c.State())
	}

	text, _ := s.Block("t")
	if text.X != 5 || text.Y != 6 || text.Width != 160 || text.Height != 104 || text.Rotation != 15 {
		t.Errorf("text = (%v,%v %vx%v r%v)", text.X, text.Y, text.Width, text.Height, text.Rotation)
	}
	if text.ScaleX != 1 || text.ScaleY != 1 {
		t.Errorf("text scale = %v,%v, want 1,1", text.ScaleX, text.ScaleY)
	}

	frame, _ := s.Block("f")
	if frame.Width != 200 || frame.Height != 50 {
		t.Errorf("frame = %vx%v, want 200x50", frame.Width, frame.Height)
	}

	d, _ := s.Block("d")
	dd, _ := d.AsDraw()
	if !reflect.DeepEqual(dd.Points, []float64{0, 0, 30, 10}) || d.Width != 30 || d.Height != 10 {
		t.Errorf("draw = %vx%v points %v", d.Width, d.Height, dd.Points)
	}

	a, _ := s.Block("arrow")
	aa, _ := a.AsArrow()
	if aa.Points != [4]float64{0, 0, 400, 0} {
		t.Errorf("arrow points = %v, want stem doubled", aa.Points)
	}
	if aa.PointerLength != 20 || aa.PointerWidth != 20 {
		t.Errorf("arrowhead changed: %v/%v", aa.PointerLength, aa.PointerWidth)
	}
	if a.Width != 420 || a.Height != 20 || a.X != 0 || a.Y != 300 {
		t.Errorf("arrow = (%v,%v %vx%v), want (0,300 420x20)", a.X, a.Y, a.Width, a.Height)
	}
}

func TestTransformEnd_RotateOnlyKeepsArrowStem(t *testing.T) {
	arrow := domain.NewArrowBlock("arrow", 0, 0, [4]float64{0, 0, 200, 0}, 220, 20)
	arrow.ID = "arrow"
	s, c := setup(t, arrow)
	if _, err := s.UpdateBlockValues("arrow", domain.Patch{"points": []float64{0, 0, 400, 0}}); err != nil {
		t.Fatal(err)
	}
	b, _ := s.Block("arrow")
	if b.Width != 420 || b.Height != 20 {
		t.Fatalf("stored box = %vx%v, want 420x20", b.Width, b.Height)
	}

	c.Handle(TransformStart{IDs: []string{"arrow"}})
	c.Handle(TransformEnd{Nodes: []NodeTransform{
		{ID: "arrow", X: 0, Y: -10, Width: 420, Height: 20, ScaleX: 1, ScaleY: 1, Rotation: 30},
	}})

	b, _ = s.Block("arrow")
	a, _ := b.AsArrow()
	if a.Points != [4]float64{0, 0, 400, 0} {
		t.Errorf("points = %v, want stem unchanged", a.Points)
	}
	if b.Rotation != 30 || b.Width != 420 {
		t.Errorf("rotation %v width %v, want 30 and 420", b.Rotation, b.Width)
	}
}

func TestTransformEnd_ZeroLengthArrow(t *testing.T) {
	arrow := domain.NewArrowBlock("arrow", 0, 0, [4]float64{10, 10, 10, 10}, 1, 1)
	arrow.ID = "arrow"
	s, c := setup(t, arrow)

	tests := []struct {
		name string
		node NodeTransform
	}{
		{"scaled", NodeTransform{ID: "arrow", Width: 40, Height: 1, ScaleX: 2, ScaleY: 2}},
		{"collapsed", NodeTransform{ID: "arrow", Width: 0, Height: 0, ScaleX: 0.5, ScaleY: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Handle(TransformStart{IDs: []string{"arrow"}})
			c.Handle(TransformEnd{Nodes: []NodeTransform{tt.node}})

			b, _ := s.Block("arrow")
			a, _ := b.AsArrow()
			for _, v := range a.Points {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("points = %v", a.Points)
				}
			}
			if a.Points[0] != a.Points[2] || a.Points[1] != a.Points[3] {
				t.Errorf("zero-length stem grew: %v", a.Points)
			}
			if b.Width < 1 || b.Height < 1 {
				t.Errorf("box = %vx%v, want at least 1x1", b.Width, b.Height)
			}
		})
	}
}

// ── text editing ────────────────────────────────────────────

func TestTextEditing(t *testing.T) {
	tests := []struct {
		name     string
		finish   Event
		wantText string
		wantH    float64
	}{
		{"enter commits", KeyDown{Key: "Enter"}, "one\ntwo\nthree", 96},
		{"blur commits", Blur{}, "one\ntwo\nthree", 96},
		{"commit event", TextCommit{}, "one\ntwo\nthree", 96},
		{"escape cancels", KeyDown{Key: "Escape"}, "New text", 52},
		{"cancel event", TextCancel{}, "New text", 52},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c := setup(t, textAt("t", 0, 0))
			c.Handle(NodeDoubleClick{ID: "t"})
			if c.State() != TextEditing || !s.Canvas().IsTextEditing {
				t.Fatalf("double click did not enter text editing")
			}
			c.Handle(TextInput{Value: "one\ntwo\nthree"})
			c.Handle(KeyDown{Key: "v"})
			if s.Canvas().Mode != editor.ModeSelect {
				t.Fatal("hotkey fired during text editing")
			}
			c.Handle(tt.finish)

			if c.State() != Idle || s.Canvas().IsTextEditing {
				t.Fatalf("still editing after %s", tt.name)
			}
			b, _ := s.Block("t")
			text, _ := b.AsText()
			if text.Text != tt.wantText || b.Height != tt.wantH {
				t.Errorf("text = %q height %v, want %q height %v", text.Text, b.Height, tt.wantText, tt.wantH)
			}
		})
	}
}

func TestTextEditing_EmptyValueKeepsOneLine(t *testing.T) {
	s, c := setup(t, textAt("t", 0, 0))
	c.Handle(NodeDoubleClick{ID: "t"})
	c.Handle(TextInput{Value: ""})
	c.Handle(TextCommit{})
	if b, _ := s.Block("t"); b.Height != 32 {
		t.Errorf("height = %v, want one line (32)", b.Height)
	}
}

// ── keyboard ────────────────────────────────────────────────

func TestHotkeys_ModeSwitching(t *testing.T) {
	tests := []struct {
		key  KeyDown
		want editor.Mode
	}{
		{KeyDown{Key: "f"}, editor.ModeFrame},
		{KeyDown{Key: "T"}, editor.ModeText},
		{KeyDown{Key: "a"}, editor.ModeArrow},
		{KeyDown{Key: "d"}, editor.ModeDraw},
		{KeyDown{Key: "h"}, editor.ModeHTML},
		{KeyDown{Key: "f", Mods: Modifiers{Alt: true}}, editor.ModeSelect},
		{KeyDown{Key: "f", Editable: true}, editor.ModeSelect},
	}
	for _, tt := range tests {
		s, c := setup(t)
		c.Handle(tt.key)
		if got := s.Canvas().Mode; got != tt.want {
			t.Errorf("%+v: mode = %s, want %s", tt.key, got, tt.want)
		}
		c.Handle(KeyDown{Key: "v"})
		if got := s.Canvas().Mode; got != editor.ModeSelect {
			t.Errorf("v: mode = %s, want select", got)
		}
	}
}

func TestHotkeys_SpacePans(t *testing.T) {
	s, c := setup(t)
	s.SetMode(editor.ModeFrame)

	c.Handle(KeyDown{Key: "Space"})
	if s.Canvas().Mode != editor.ModeMove {
		t.Fatalf("space did not switch to move mode")
	}
	c.Handle(PointerDown{Screen: pt(0, 0)})
	c.Handle(PointerMove{Screen: pt(30, 40)})
	if got := s.Canvas().StagePosition; got != pt(30, 40) {
		t.Errorf("stage = %+v, want (30,40)", got)
	}
	c.Handle(PointerUp{Screen: pt(30, 40)})
	c.Handle(KeyUp{Key: "Space"})
	if s.Canvas().Mode != editor.ModeFrame {
		t.Errorf("mode = %s after release, want frame", s.Canvas().Mode)
	}

	c.Handle(KeyDown{Key: " "})
	c.Handle(Blur{})
	if s.Canvas().Mode != editor.ModeFrame {
		t.Errorf("blur did not restore the mode")
	}
}

func TestHotkeys_Commands(t *testing.T) {
	hidden := frameAt("h", 0, 0, 10, 10)
	hidden.Visible = false
	s, c := setup(t, frameAt("a", 10, 10, 10, 10), hidden, frameAt("b", 40, 40, 10, 10))
	cmd := Modifiers{Meta: true}

	c.Handle(KeyDown{Key: "a", Mods: cmd})
	if got := s.SelectedIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("select all = %v, want visible [a b]", got)
	}
	if s.Canvas().Mode != editor.ModeSelect {
		t.Error("cmd+a switched to arrow mode")
	}

	c.Handle(KeyDown{Key: "c", Mods: cmd})
	c.Handle(PointerMove{Screen: pt(200, 300)})
	c.Handle(KeyDown{Key: "v", Mods: cmd})
	pasted := s.SelectedIDs()
	if len(pasted) != 2 {
		t.Fatalf("paste selected %v", pasted)
	}
	first, _ := s.Block(pasted[0])
	second, _ := s.Block(pasted[1])
	if first.X != 200 || first.Y != 300 || second.X != 230 || second.Y != 330 {
		t.Errorf("pasted at (%v,%v) and (%v,%v)", first.X, first.Y, second.X, second.Y)
	}

	c.Handle(KeyDown{Key: "z", Mods: cmd})
	if n := len(s.Blocks()); n != 3 {
		t.Fatalf("after undo: %d blocks, want 3", n)
	}
	c.Handle(KeyDown{Key: "z", Mods: Modifiers{Ctrl: true, Shift: true}})
	if n := len(s.Blocks()); n != 5 {
		t.Fatalf("after redo: %d blocks, want 5", n)
	}
	c.Handle(KeyDown{Key: "z", Mods: cmd})
	c.Handle(KeyDown{Key: "y", Mods: Modifiers{Ctrl: true}})
	if n := len(s.Blocks()); n != 5 {
		t.Fatalf("after ctrl+y: %d blocks, want 5", n)
	}

	s.SetSelectedIDs([]string{"a"})
	c.Handle(KeyDown{Key: "d", Mods: cmd})
	if n := len(s.Blocks()); n != 6 {
		t.Errorf("cmd+d with one selected: %d blocks, want 6", n)
	}
	s.SetSelectedIDs([]string{"a", "b"})
	c.Handle(KeyDown{Key: "d", Mods: cmd})
	if n := len(s.Blocks()); n != 6 {
		t.Errorf("cmd+d with two selected duplicated anyway")
	}

	c.Handle(KeyDown{Key: "Backspace"})
	if n := len(s.Blocks()); n != 4 {
		t.Errorf("backspace: %d blocks, want 4", n)
	}
}

func TestHotkeys_PasteWithoutPointerUsesOffset(t *testing.T) {
	s, c := setup(t, frameAt("a", 10, 10, 10, 10))
	s.SetSelectedIDs([]string{"a"})
	c.Handle(KeyDown{Key: "c", Mods: Modifiers{Ctrl: true}})
	c.Handle(KeyDown{Key: "v", Mods: Modifiers{Ctrl: true}})
	pasted := s.SelectedIDs()
	if len(pasted) != 1 {
		t.Fatalf("pasted %v", pasted)
	}
	if b, _ := s.Block(pasted[0]); b.X != 34 || b.Y != 34 {
		t.Errorf("pasted at (%v,%v), want (34,34)", b.X, b.Y)
	}
}

// ── viewport ────────────────────────────────────────────────

func TestWheel(t *testing.T) {
	s, c := setup(t)
	c.Handle(Wheel{DeltaX: 10, DeltaY: 20})
	if got := s.Canvas().StagePosition; got != pt(-10, -20) {
		t.Errorf("scroll pan = %+v, want (-10,-20)", got)
	}
	c.Handle(Wheel{Screen: pt(100, 100), DeltaY: -1, Mods: Modifiers{Ctrl: true}})
	if z := s.Canvas().Zoom; math.Abs(z-geometry.ZoomStep) > 1e-9 {
		t.Errorf("zoom = %v, want %v", z, geometry.ZoomStep)
	}
}

func TestPointerUsesViewport(t *testing.T) {
	s, c := setup(t)
	s.SetZoom(2)
	s.SetStagePosition(pt(100, 0))
	s.SetMode(editor.ModeFrame)
	c.Handle(PointerDown{Screen: pt(300, 200)})
	c.Handle(PointerUp{Screen: pt(300, 200)})
	if b := only(t, s); b.X != 100 || b.Y != 100 {
		t.Errorf("placed at (%v,%v), want canvas (100,100)", b.X, b.Y)
	}
}
