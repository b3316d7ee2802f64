package gerber

import "gerberflow/geom"

// regionBuilder accumulates the contour(s) of an in-progress G36...G37
// region.
type regionBuilder struct {
	contours      [][]geom.Point
	current       []geom.Point
	apertureAttrs AttributeDictionary // captured at G36
}

func newRegionBuilder(start geom.Point, apertureAttrs AttributeDictionary) *regionBuilder {
	return &regionBuilder{
		current:       []geom.Point{start},
		apertureAttrs: apertureAttrs.Clone(),
	}
}

// lineTo appends a straight segment to the current contour (Linear D01).
func (r *regionBuilder) lineTo(p geom.Point) {
	r.current = append(r.current, p)
}

// arcTo appends a flattened arc to the current contour (CW/CCW D01). The
// arc's own first point is assumed to coincide with the contour's current
// last point, so it is dropped to avoid a duplicate vertex.
func (r *regionBuilder) arcTo(center geom.Point, radius, startDeg, extentDeg float64) {
	pts := geom.ArcPolyline(center, radius, startDeg, extentDeg)
	if len(pts) > 1 {
		r.current = append(r.current, pts[1:]...)
	}
}

// moveTo closes the current contour (if non-empty) and begins a new one
// at p (D02 inside a region).
func (r *regionBuilder) moveTo(p geom.Point) {
	if len(r.current) > 1 {
		r.contours = append(r.contours, r.current)
	}
	r.current = []geom.Point{p}
}

// flush implements G37: closes any open contour, fills the non-zero-
// winding interior of every recorded contour, and returns the single
// resulting GraphicalObject with the Object-type attributes attached
// (object-type entries win on a name collision).
func (r *regionBuilder) flush(polarity Polarity, objectAttrs AttributeDictionary) GraphicalObject {
	if len(r.current) > 1 {
		r.contours = append(r.contours, r.current)
	}
	area := geom.Area{}
	var stroke []geom.Point
	for _, c := range r.contours {
		area = area.Add(geom.ClosedPathArea(c))
		stroke = append(stroke, c...)
	}
	obj := GraphicalObject{
		Area:       area,
		Polarity:   polarity,
		Attributes: r.apertureAttrs.Merge(objectAttrs),
		Metadata:   ObjectMetadata{StrokeInfo: stroke},
	}
	return obj
}
