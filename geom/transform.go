// Package geom is the planar geometry kernel: points, affine transforms,
// set-theoretic areas built over polygon clipping, and the Gerber arc
// parameter solver.
package geom

import "math"

// Point is an ordered pair of real numbers. Copied by value everywhere;
// there is no mutation surface.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// AffineTransform is the 2x3 matrix
//
//	[ A B TX ]
//	[ C D TY ]
//
// applied as x' = A*x + B*y + TX, y' = C*x + D*y + TY.
type AffineTransform struct {
	A, B, C, D, TX, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform { return AffineTransform{A: 1, D: 1} }

// Translate returns a pure translation.
func Translate(dx, dy float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: dx, TY: dy}
}

// Scale returns a pure (possibly anisotropic, possibly negative for mirror)
// scale about the origin.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Rotate returns a pure rotation of deg degrees about the origin,
// counterclockwise for positive deg under a Y-up convention.
func Rotate(deg float64) AffineTransform {
	r := deg * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	return AffineTransform{A: c, B: -s, C: s, D: c}
}

// Compose returns t2∘t1, meaning "apply t1 first, then t2".
func (t2 AffineTransform) Compose(t1 AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t2.A*t1.A + t2.B*t1.C,
		B:  t2.A*t1.B + t2.B*t1.D,
		C:  t2.C*t1.A + t2.D*t1.C,
		D:  t2.C*t1.B + t2.D*t1.D,
		TX: t2.A*t1.TX + t2.B*t1.TY + t2.TX,
		TY: t2.C*t1.TX + t2.D*t1.TY + t2.TY,
	}
}

// Apply maps p through the transform.
func (t AffineTransform) Apply(p Point) Point {
	return Point{t.A*p.X + t.B*p.Y + t.TX, t.C*p.X + t.D*p.Y + t.TY}
}

// ScaleMagnitude returns sqrt(|det|), the linear scaling factor of the
// linear part of the transform (the square root of its area-scaling
// factor) — used to scale stroke widths under mirror+scale.
func (t AffineTransform) ScaleMagnitude() float64 {
	return math.Sqrt(math.Abs(t.A*t.D - t.B*t.C))
}
