package geom

import "sort"

// ConvexHull returns the convex hull of pts in counterclockwise order via
// Andrew's monotone chain. Used by StrokeRectangleHexagon to compute the
// Minkowski-sum hexagon of a rectangle aperture stroked along a segment:
// the hull of the rectangle's four corners placed at both stroke
// endpoints is exactly that hexagon (a parallelogram-like rectangle when
// the segment runs parallel to a rectangle edge).
func ConvexHull(pts []Point) []Point {
	pts = append([]Point(nil), pts...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	n := len(pts)
	if n < 3 {
		return pts
	}
	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]Point, 0, 2*n)
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// StrokeRectangleHexagon strokes the segment a-b with a rectangle
// aperture, given its four (already rotated/mirrored/scaled) corner
// offsets, via the Minkowski-sum hull of those corners placed at both
// endpoints.
func StrokeRectangleHexagon(a, b Point, cornerOffsets [4]Point) Area {
	pts := make([]Point, 0, 8)
	for _, c := range cornerOffsets {
		pts = append(pts, Point{a.X + c.X, a.Y + c.Y})
		pts = append(pts, Point{b.X + c.X, b.Y + c.Y})
	}
	return AreaFromPolygon(ConvexHull(pts))
}
