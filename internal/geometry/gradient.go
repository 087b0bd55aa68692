package geometry

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ColorStop is one (offset, colour) pair of a gradient, offset in [0,1].
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Fill is either a solid colour or a linear gradient resolved against a box.
type Fill struct {
	Solid string      `json:"solid,omitempty"`
	Start Point       `json:"start"`
	End   Point       `json:"end"`
	Stops []ColorStop `json:"stops,omitempty"`
}

// IsGradient reports whether the fill carries gradient stops.
func (f Fill) IsGradient() bool {
	return len(f.Stops) > 0
}

var (
	gradientRe  = regexp.MustCompile(`(?i)linear-gradient\((.*)\)`)
	directionRe = regexp.MustCompile(`(?i)^to\s+([a-z\s]+)`)
	angleRe     = regexp.MustCompile(`(-?\d+(?:\.\d+)?)deg`)
	colorRe     = regexp.MustCompile(`(rgba?\([^)]+\)|#[0-9a-fA-F]{3,8}|hsla?\([^)]+\)|[a-zA-Z]+)`)
)

var directionAngles = map[string]float64{
	"top":          0,
	"right":        90,
	"bottom":       180,
	"left":         270,
	"top right":    45,
	"right top":    45,
	"bottom right": 135,
	"right bottom": 135,
	"bottom left":  225,
	"left bottom":  225,
	"top left":     315,
	"left top":     315,
}

// ParseLinearGradient resolves a CSS linear-gradient() string against a w×h
// box. Anything that is not a gradient is returned as a solid fill.
func ParseLinearGradient(value string, w, h float64) Fill {
	m := gradientRe.FindStringSubmatch(value)
	if m == nil {
		return Fill{Solid: value}
	}
	parts := splitGradientArgs(m[1])
	if len(parts) == 0 {
		return Fill{Solid: value}
	}

	angle := 180.0
	first := parts[0]
	if dm := directionRe.FindStringSubmatch(first); dm != nil {
		dir := strings.Join(strings.Fields(strings.ToLower(dm[1])), " ")
		if a, ok := directionAngles[dir]; ok {
			angle = a
		}
		parts = parts[1:]
	} else if am := angleRe.FindStringSubmatch(first); am != nil {
		if a, err := strconv.ParseFloat(am[1], 64); err == nil {
			angle = a
		}
		parts = parts[1:]
	}
	if len(parts) == 0 {
		parts = []string{first}
	}

	stops := make([]ColorStop, len(parts))
	for i, p := range parts {
		stops[i] = parseStop(p, i, len(parts))
	}
	start, end := angleToPoints(angle, w, h)
	return Fill{Start: start, End: end, Stops: stops}
}

// splitGradientArgs splits on top-level commas, leaving rgba(...) intact.
func splitGradientArgs(input string) []string {
	var args []string
	var buf strings.Builder
	depth := 0
	for _, r := range input {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			args = append(args, strings.TrimSpace(buf.String()))
			buf.Reset()
			continue
		}
		buf.WriteRune(r)
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		args = append(args, s)
	}
	return args
}

func parseStop(value string, index, total int) ColorStop {
	color := strings.TrimSpace(value)
	if m := colorRe.FindString(value); m != "" {
		color = strings.TrimSpace(m)
	}
	rest := strings.TrimSpace(strings.Replace(value, color, "", 1))

	even := 0.0
	if total > 1 {
		even = float64(index) / float64(total-1)
	}
	offset := even
	switch {
	case strings.HasSuffix(rest, "%"):
		if v, err := strconv.ParseFloat(strings.TrimSuffix(rest, "%"), 64); err == nil {
			offset = v / 100
		}
	case rest != "":
		if v, err := strconv.ParseFloat(rest, 64); err == nil {
			offset = v
		}
	}
	return ColorStop{Offset: math.Min(1, math.Max(0, offset)), Color: color}
}

// angleToPoints places the gradient line through the box centre, spanning the
// half diagonal each way. 0deg points up, 90deg right (screen y grows down).
func angleToPoints(angle, w, h float64) (Point, Point) {
	rad := (90 - angle) * math.Pi / 180
	dist := math.Hypot(w, h) / 2
	dx := math.Cos(rad) * dist
	dy := -math.Sin(rad) * dist
	c := Point{X: w / 2, Y: h / 2}
	return Point{X: c.X - dx, Y: c.Y - dy}, Point{X: c.X + dx, Y: c.Y + dy}
}
