package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// Area is a set-theoretic planar region, composed via polygon boolean
// operations backed by github.com/ctessum/polyclip-go. Arcs and circles
// are flattened to polygons at a fixed, deterministic tolerance
// (ArcSegments) before being handed to the clipper.
type Area struct {
	poly polyclip.Polygon
}

// EmptyArea returns the empty region.
func EmptyArea() Area { return Area{} }

// IsEmpty reports whether the area contains no points.
func (a Area) IsEmpty() bool {
	for _, c := range a.poly {
		if len(c) > 0 {
			return false
		}
	}
	return true
}

func fromPoints(pts []Point) polyclip.Contour {
	c := make(polyclip.Contour, 0, len(pts))
	for _, p := range pts {
		c = append(c, polyclip.Point{X: p.X, Y: p.Y})
	}
	return c
}

// AreaFromPolygon builds an Area from a single closed contour. Points need
// not repeat the first point at the end.
func AreaFromPolygon(pts []Point) Area {
	if len(pts) < 3 {
		return Area{}
	}
	return Area{poly: polyclip.Polygon{fromPoints(pts)}}
}

// AreaFromContours builds an Area from several contours at once, e.g. a
// shape that already carries explicit holes as separate contours.
func AreaFromContours(contours [][]Point) Area {
	poly := make(polyclip.Polygon, 0, len(contours))
	for _, c := range contours {
		if len(c) >= 3 {
			poly = append(poly, fromPoints(c))
		}
	}
	return Area{poly: poly}
}

// Add returns the union a∪b.
func (a Area) Add(b Area) Area {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Area{poly: a.poly.Construct(polyclip.UNION, b.poly)}
}

// Subtract returns the difference a∖b.
func (a Area) Subtract(b Area) Area {
	if a.IsEmpty() || b.IsEmpty() {
		return a
	}
	return Area{poly: a.poly.Construct(polyclip.DIFFERENCE, b.poly)}
}

// Transform maps every contour vertex through t.
func (a Area) Transform(t AffineTransform) Area {
	out := make(polyclip.Polygon, len(a.poly))
	for i, c := range a.poly {
		nc := make(polyclip.Contour, len(c))
		for j, p := range c {
			tp := t.Apply(Point{p.X, p.Y})
			nc[j] = polyclip.Point{X: tp.X, Y: tp.Y}
		}
		out[i] = nc
	}
	return Area{poly: out}
}

// Contours exposes the underlying polygon contours, e.g. for region profile
// extraction.
func (a Area) Contours() [][]Point {
	out := make([][]Point, len(a.poly))
	for i, c := range a.poly {
		pts := make([]Point, len(c))
		for j, p := range c {
			pts[j] = Point{p.X, p.Y}
		}
		out[i] = pts
	}
	return out
}

// Bounds is an axis-aligned rectangle. Empty bounds are represented with
// MaxX < MinX.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether b represents the empty bounding box.
func (b Bounds) Empty() bool { return b.MaxX < b.MinX || b.MaxY < b.MinY }

// Degenerate reports a zero-width AND zero-height box.
func (b Bounds) Degenerate() bool {
	return !b.Empty() && b.MaxX-b.MinX == 0 && b.MaxY-b.MinY == 0
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Width and Height report the box extents; zero for an empty box.
func (b Bounds) Width() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxX - b.MinX
}

func (b Bounds) Height() float64 {
	if b.Empty() {
		return 0
	}
	return b.MaxY - b.MinY
}

// Bounds computes the axis-aligned bounding box of the area's vertices.
func (a Area) Bounds() Bounds {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	any := false
	for _, c := range a.poly {
		for _, p := range c {
			any = true
			if p.X < b.MinX {
				b.MinX = p.X
			}
			if p.Y < b.MinY {
				b.MinY = p.Y
			}
			if p.X > b.MaxX {
				b.MaxX = p.X
			}
			if p.Y > b.MaxY {
				b.MaxY = p.Y
			}
		}
	}
	if !any {
		return Bounds{MinX: 0, MinY: 0, MaxX: -1, MaxY: -1}
	}
	return b
}
