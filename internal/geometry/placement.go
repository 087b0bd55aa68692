package geometry

import (
	"math"
	"strings"

	"canvas/internal/domain"
)

// MaxImageDimension caps the longer side of a newly placed image.
const MaxImageDimension = 800

// ImageSize is the natural pixel size of a pending image.
type ImageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScaleToFit shrinks (never enlarges) w×h so the longer side is at most max,
// rounding and clamping each side to at least 1.
func ScaleToFit(w, h, max float64) (float64, float64) {
	longest := math.Max(w, h)
	scale := 1.0
	if longest > 0 {
		scale = math.Min(1, max/longest)
	}
	return math.Max(1, math.Round(w*scale)), math.Max(1, math.Round(h*scale))
}

// DefaultSize returns the click-placement size for a block type.
func DefaultSize(t domain.BlockType, img *ImageSize, maxImage float64) (float64, float64) {
	switch t {
	case domain.BlockTypeText:
		return domain.DefaultTextSize.Width, domain.DefaultTextSize.Height
	case domain.BlockTypeFrame:
		return domain.DefaultFrameSize.Width, domain.DefaultFrameSize.Height
	case domain.BlockTypeHTML:
		return domain.DefaultHTMLSize.Width, domain.DefaultHTMLSize.Height
	case domain.BlockTypeImage:
		if img != nil {
			return ScaleToFit(img.Width, img.Height, maxImage)
		}
	}
	return domain.DefaultOtherSize.Width, domain.DefaultOtherSize.Height
}

// Placement computes the box a placement gesture produces. Both the live
// preview and the committed block use it, so they always agree. A drag spans
// start→current (images keep their aspect ratio along the dominant axis); a
// click yields the default size anchored at start.
func Placement(start, current Point, t domain.BlockType, isDrag bool, img *ImageSize, maxImage float64) Rect {
	if !isDrag {
		w, h := DefaultSize(t, img, maxImage)
		return Rect{X: start.X, Y: start.Y, Width: w, Height: h}
	}

	dx := current.X - start.X
	dy := current.Y - start.Y
	r := Rect{
		X:      math.Min(start.X, current.X),
		Y:      math.Min(start.Y, current.Y),
		Width:  math.Abs(dx),
		Height: math.Abs(dy),
	}
	if t == domain.BlockTypeImage && img != nil && img.Width > 0 && img.Height > 0 {
		aspect := img.Width / img.Height
		if math.Abs(dx) > math.Abs(dy) {
			r.Height = r.Width / aspect
		} else {
			r.Width = r.Height * aspect
		}
	}
	return r
}

// ArrowPlacement returns the stem and derived box for an arrow placed at start.
// The block position equals start so the stem begins under the pointer.
func ArrowPlacement(start, current Point, isDrag bool) ([4]float64, ArrowBounds) {
	pts := domain.DefaultArrowPoints
	if isDrag {
		pts = [4]float64{0, 0, current.X - start.X, current.Y - start.Y}
	}
	return pts, ComputeArrowBounds(pts, domain.DefaultPointerLength, domain.DefaultPointerWidth, domain.DefaultArrowStroke)
}

// StrokeBounds returns the bounds of a flat x,y list with each side at least 1,
// together with the points rebased onto the bounds origin.
func StrokeBounds(points []float64) (Rect, []float64) {
	pts := make([]Point, 0, len(points)/2)
	for i := 0; i+1 < len(points); i += 2 {
		pts = append(pts, Point{X: points[i], Y: points[i+1]})
	}
	r, ok := BoundsOfPoints(pts)
	if !ok {
		return Rect{Width: 1, Height: 1}, nil
	}
	r.Width = math.Max(1, r.Width)
	r.Height = math.Max(1, r.Height)

	rebased := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		rebased = append(rebased, p.X-r.X, p.Y-r.Y)
	}
	return r, rebased
}

// TextHeight is the committed height of edited text: one line-height per line,
// never less than a single line.
func TextHeight(text string, lineHeight float64) float64 {
	lines := strings.Count(text, "\n") + 1
	return math.Max(lineHeight, float64(lines)*lineHeight)
}
