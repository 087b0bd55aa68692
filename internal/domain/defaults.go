package domain

import (
	"math"

	"github.com/google/uuid"
)

// NewID returns a fresh block identifier.
func NewID() string {
	return uuid.NewString()
}

// Default block sizes used by click placement.
var (
	DefaultTextSize  = Size{Width: 320, Height: 52}
	DefaultFrameSize = Size{Width: 240, Height: 240}
	DefaultHTMLSize  = Size{Width: 240, Height: 240}
	DefaultOtherSize = Size{Width: 100, Height: 100}
)

// DefaultArrowPoints is the stem of a click-placed arrow.
var DefaultArrowPoints = [4]float64{0, 0, 200, 0}

func newBase(label string, x, y, w, h float64) Base {
	return Base{
		ID:      NewID(),
		Label:   label,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		ScaleX:  1,
		ScaleY:  1,
		Visible: true,
		Opacity: 100,
	}
}

func NewTextBlock(label string, x, y, w, h float64) *Block {
	return &Block{
		Base: newBase(label, x, y, w, h),
		Data: &Text{
			Text:       "New text",
			Color:      "#1f2933",
			FontSize:   24,
			LineHeight: 32,
			TextAlign:  TextAlignLeft,
			Font:       Font{Family: "Poppins", Weight: "500"},
		},
	}
}

func NewFrameBlock(label string, x, y, w, h float64) *Block {
	b := &Block{Base: newBase(label, x, y, w, h), Data: &Frame{}}
	b.Background = "#ffffff"
	b.Border = &Border{Color: "#d1d5db", Width: 1}
	b.Radius = &Radius{TL: 16, TR: 16, BR: 16, BL: 16}
	return b
}

func NewImageBlock(label, url string, x, y, w, h float64) *Block {
	return &Block{
		Base: newBase(label, x, y, w, h),
		Data: &Image{URL: url, Fit: ImageFitContain, Position: ImagePositionCenter},
	}
}

// NewArrowBlock builds an arrow whose width/height must already be the derived box size.
func NewArrowBlock(label string, x, y float64, points [4]float64, w, h float64) *Block {
	return &Block{
		Base: newBase(label, x, y, w, h),
		Data: &Arrow{
			Points:        points,
			PointerLength: DefaultPointerLength,
			PointerWidth:  DefaultPointerWidth,
			Fill:          "#000000",
			Stroke:        "#000000",
			StrokeWidth:   DefaultArrowStroke,
		},
	}
}

func NewHTMLBlock(label, html string, x, y, w, h float64) *Block {
	b := &Block{Base: newBase(label, x, y, w, h), Data: &HTML{HTML: html}}
	b.Background = "#ffffff"
	b.Border = &Border{Color: "#d1d5db", Width: 1}
	return b
}

func NewDrawBlock(label string, x, y, w, h float64, points []float64) *Block {
	return &Block{
		Base: newBase(label, x, y, w, h),
		Data: &Draw{
			Points:      points,
			Stroke:      DefaultDrawStroke,
			StrokeWidth: DefaultDrawStrokeWidth,
		},
	}
}

// EnsureDefaults normalises derived attributes after any mutation.
// Zero scale is treated as unset.
func EnsureDefaults(b *Block) {
	if b.ScaleX == 0 {
		b.ScaleX = 1
	}
	if b.ScaleY == 0 {
		b.ScaleY = 1
	}
	b.Width = math.Max(0, b.Width)
	b.Height = math.Max(0, b.Height)
	b.Opacity = math.Min(100, math.Max(0, b.Opacity))

	if b.Radius != nil {
		limit := math.Min(b.Width, b.Height) / 2
		clamp := func(v float64) float64 { return math.Min(limit, math.Max(0, v)) }
		b.Radius.TL = clamp(b.Radius.TL)
		b.Radius.TR = clamp(b.Radius.TR)
		b.Radius.BR = clamp(b.Radius.BR)
		b.Radius.BL = clamp(b.Radius.BL)
	}

	switch d := b.Data.(type) {
	case *Image:
		if d.Fit == "" {
			d.Fit = ImageFitContain
		}
		if d.Position == "" {
			d.Position = ImagePositionCenter
		}
	case *Draw:
		if d.Stroke == "" {
			d.Stroke = DefaultDrawStroke
		}
	}
}
