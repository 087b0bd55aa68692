package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Affine is a 2D affine transform stored as a 3x3 homogeneous matrix.
type Affine struct {
	m *mat.Dense
}

func Identity() Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

func Translate(tx, ty float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, tx,
		0, 1, ty,
		0, 0, 1,
	})}
}

// Rotate returns a rotation by deg degrees. With y pointing down a positive
// angle turns clockwise on screen.
func Rotate(deg float64) Affine {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine{m: mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})}
}

func Scale(sx, sy float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})}
}

// Then returns the transform that applies a first and then next.
func (a Affine) Then(next Affine) Affine {
	var r mat.Dense
	r.Mul(next.m, a.m)
	return Affine{m: &r}
}

// Compose applies the transforms left to right: Compose(a, b, c) maps p to c(b(a(p))).
func Compose(ts ...Affine) Affine {
	out := Identity()
	for _, t := range ts {
		out = out.Then(t)
	}
	return out
}

// Apply maps a point through the transform.
func (a Affine) Apply(p Point) Point {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var r mat.VecDense
	r.MulVec(a.m, v)
	return Point{X: r.AtVec(0), Y: r.AtVec(1)}
}

// Inverse returns the inverse transform, failing for degenerate (zero-scale) transforms.
func (a Affine) Inverse() (Affine, error) {
	var inv mat.Dense
	if err := inv.Inverse(a.m); err != nil {
		return Affine{}, fmt.Errorf("invert transform: %w", err)
	}
	return Affine{m: &inv}, nil
}
