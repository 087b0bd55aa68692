package geometry

import (
	"math"

	"canvas/internal/domain"
)

// ZoomStep is the multiplicative step of one zoom-in/zoom-out action.
const ZoomStep = 1.1

const (
	MinZoom = 0.05
	MaxZoom = 20
)

// containerMargin is subtracted from the container before fitting the canvas.
const containerMargin = 50

// Viewport maps canvas space to screen space: screen = canvas*Zoom + Pan.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`
}

func (v Viewport) zoom() float64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

// ToScreen converts a canvas point to screen space.
func (v Viewport) ToScreen(p Point) Point {
	return p.Scale(v.zoom()).Add(v.Pan)
}

// ToCanvas converts a screen point to canvas space.
func (v Viewport) ToCanvas(p Point) Point {
	return p.Sub(v.Pan).Scale(1 / v.zoom())
}

// Transform returns the canvas→screen affine.
func (v Viewport) Transform() Affine {
	return Scale(v.zoom(), v.zoom()).Then(Translate(v.Pan.X, v.Pan.Y))
}

// ZoomAt changes the zoom while keeping the canvas point under the screen
// anchor fixed. The zoom is clamped to [MinZoom, MaxZoom].
func (v Viewport) ZoomAt(anchor Point, zoom float64) Viewport {
	zoom = math.Min(MaxZoom, math.Max(MinZoom, zoom))
	canvasPt := v.ToCanvas(anchor)
	return Viewport{
		Zoom: zoom,
		Pan:  anchor.Sub(canvasPt.Scale(zoom)),
	}
}

// DefaultZoom fits the canvas into the container minus a margin. It returns 1
// when the container is unknown or the canvas already fits along either axis.
func DefaultZoom(canvas, container domain.Size) float64 {
	cw := container.Width - containerMargin
	ch := container.Height - containerMargin
	if cw <= 0 || ch <= 0 || canvas.Width < cw || canvas.Height < ch {
		return 1
	}
	ratio := math.Min(cw/canvas.Width, ch/canvas.Height)
	return math.Floor(ratio*100) / 100
}

// CenterStage returns the pan offset that centres the scaled canvas in the
// container. It returns false while either size is unknown.
func CenterStage(canvas, container domain.Size, zoom float64) (Point, bool) {
	if container.Width == 0 || container.Height == 0 || canvas.Width == 0 || canvas.Height == 0 {
		return Point{}, false
	}
	if zoom == 0 {
		zoom = 1
	}
	return Point{
		X: (container.Width - canvas.Width*zoom) / 2,
		Y: (container.Height - canvas.Height*zoom) / 2,
	}, true
}

// ViewportCenteredPosition returns the rounded top-left for a w×h box centred
// in the visible part of the canvas, or in the canvas itself when the
// container size is unknown.
func ViewportCenteredPosition(v Viewport, container, canvas domain.Size, w, h float64) Point {
	var center Point
	if container.Width > 0 && container.Height > 0 {
		center = v.ToCanvas(Point{X: container.Width / 2, Y: container.Height / 2})
	} else {
		center = Point{X: canvas.Width / 2, Y: canvas.Height / 2}
	}
	return Point{X: math.Round(center.X - w/2), Y: math.Round(center.Y - h/2)}
}
