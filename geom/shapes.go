package geom

import "math"

// ArcSegments is the number of straight segments used to approximate one
// full revolution when flattening a circle or arc into a polygon contour
// for the boolean engine. Fixed at 180 (a 2-degree angular step): coarse
// enough to keep Construct() calls cheap, fine enough that stroke widths
// and hole diameters measured in the low single-digit millimeters do not
// visibly facet. The value never changes at runtime, so object ordering
// and polarity are unaffected by it.
const ArcSegments = 180

// Circle returns a filled disc of the given diameter centered at c.
func Circle(c Point, diameter float64) Area {
	r := diameter / 2
	if r <= 0 {
		return Area{}
	}
	return AreaFromPolygon(circlePoints(c, r, ArcSegments))
}

func circlePoints(c Point, r float64, segments int) []Point {
	pts := make([]Point, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Point{c.X + r*math.Cos(theta), c.Y + r*math.Sin(theta)}
	}
	return pts
}

// Rectangle returns an axis-aligned rectangle of width w, height h centered
// at c.
func Rectangle(c Point, w, h float64) Area {
	hw, hh := w/2, h/2
	return AreaFromPolygon([]Point{
		{c.X - hw, c.Y - hh},
		{c.X + hw, c.Y - hh},
		{c.X + hw, c.Y + hh},
		{c.X - hw, c.Y + hh},
	})
}

// Obround returns a stadium shape (rectangle capped by semicircles of
// radius min(w,h)/2), centered at c.
func Obround(c Point, w, h float64) Area {
	if w == h {
		return Circle(c, w)
	}
	if w > h {
		r := h / 2
		span := w - h
		return stadium(Point{c.X - span/2, c.Y}, Point{c.X + span/2, c.Y}, r)
	}
	r := w / 2
	span := h - w
	return stadium(Point{c.X, c.Y - span/2}, Point{c.X, c.Y + span/2}, r)
}

// stadium is the Minkowski sum of segment a-b with a disc of radius r: a
// capsule with round caps. Shared by Obround and round-capped strokes.
func stadium(a, b Point, r float64) Area {
	if a == b {
		return Circle(a, 2*r)
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	segAngle := math.Atan2(dy, dx)
	half := ArcSegments / 2
	pts := make([]Point, 0, half*2+2)
	for i := 0; i <= half; i++ {
		theta := segAngle + math.Pi/2 - math.Pi*float64(i)/float64(half)
		pts = append(pts, Point{b.X + r*math.Cos(theta), b.Y + r*math.Sin(theta)})
	}
	for i := 0; i <= half; i++ {
		theta := segAngle - math.Pi/2 - math.Pi*float64(i)/float64(half)
		pts = append(pts, Point{a.X + r*math.Cos(theta), a.Y + r*math.Sin(theta)})
	}
	return AreaFromPolygon(pts)
}

// RegularPolygon returns a regular n-gon inscribed so its circumscribed
// circle has diameter d, centered at c, with its first vertex at angle
// theta0 degrees (P template and macro polygon primitive).
func RegularPolygon(c Point, d float64, n int, theta0 float64) Area {
	r := d / 2
	base := theta0 * math.Pi / 180
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		theta := base + 2*math.Pi*float64(i)/float64(n)
		pts[i] = Point{c.X + r*math.Cos(theta), c.Y + r*math.Sin(theta)}
	}
	return AreaFromPolygon(pts)
}

// StrokeLineRoundCap strokes the segment a-b with a round-capped, round-
// jointed stroke of the given width: circle apertures on straight draws.
func StrokeLineRoundCap(a, b Point, width float64) Area {
	if width <= 0 {
		width = 1e-7
	}
	return stadium(a, b, width/2)
}

// StrokeLineButtCap strokes the segment a-b with a rectangular, butt-capped
// stroke of the given width, oriented along a-b (macro primitives 2/20).
func StrokeLineButtCap(a, b Point, width float64) Area {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return Area{}
	}
	ux, uy := dx/length, dy/length
	nx, ny := -uy*width/2, ux*width/2
	return AreaFromPolygon([]Point{
		{a.X + nx, a.Y + ny},
		{b.X + nx, b.Y + ny},
		{b.X - nx, b.Y - ny},
		{a.X - nx, a.Y - ny},
	})
}

// StrokeArcRoundCap flattens and strokes an arc (center c, radius r, from
// startDeg sweeping extentDeg) with a round-capped stroke of the given
// width.
func StrokeArcRoundCap(c Point, r, startDeg, extentDeg, width float64) Area {
	pts := arcPoints(c, r, startDeg, extentDeg)
	if len(pts) == 0 {
		return Area{}
	}
	area := Area{}
	for i := 0; i+1 < len(pts); i++ {
		area = area.Add(stadium(pts[i], pts[i+1], width/2))
	}
	return area
}

// arcPoints flattens the arc into a polyline of world-space points,
// scaling segment count to the swept angle so short arcs stay cheap.
func arcPoints(c Point, r, startDeg, extentDeg float64) []Point {
	if r <= 0 {
		return nil
	}
	segments := int(math.Ceil(math.Abs(extentDeg) / 360 * ArcSegments))
	if segments < 1 {
		segments = 1
	}
	pts := make([]Point, segments+1)
	for i := 0; i <= segments; i++ {
		deg := startDeg + extentDeg*float64(i)/float64(segments)
		rad := deg * math.Pi / 180
		pts[i] = Point{c.X + r*math.Cos(rad), c.Y + r*math.Sin(rad)}
	}
	return pts
}

// ArcPolyline exposes the flattened arc polyline for callers that need the
// raw centerline (region contour building, strokeInfo).
func ArcPolyline(c Point, r, startDeg, extentDeg float64) []Point {
	return arcPoints(c, r, startDeg, extentDeg)
}

// ClosedPathArea returns the filled, non-zero-winding interior of an
// arbitrary closed path made of line and arc segments already flattened to
// points (region flush).
func ClosedPathArea(pts []Point) Area {
	return AreaFromPolygon(pts)
}
