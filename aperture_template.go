package gerber

import (
	"strconv"
	"strings"

	"gerberflow/geom"
)

// TemplateKind distinguishes the standard shape tags from user macros.
type TemplateKind int

const (
	TemplateCircle TemplateKind = iota
	TemplateRectangle
	TemplateObround
	TemplatePolygon
	TemplateMacro
)

// ApertureTemplate is either a standard shape tag or a Macro carrying an
// ordered list of un-evaluated macro command strings.
type ApertureTemplate struct {
	Kind      TemplateKind
	Name      string
	MacroBody []string // raw "0 ...", "$n=expr", "k,e1,...,em" lines, Kind==TemplateMacro only
}

// StandardTemplates returns the pre-populated template dictionary:
// C, R, O, P.
func StandardTemplates() map[string]ApertureTemplate {
	return map[string]ApertureTemplate{
		"C": {Kind: TemplateCircle, Name: "C"},
		"R": {Kind: TemplateRectangle, Name: "R"},
		"O": {Kind: TemplateObround, Name: "O"},
		"P": {Kind: TemplatePolygon, Name: "P"},
	}
}

// Realize builds the aperture's local-coordinate area by instantiating
// the template with actual parameters. A hole is a subtracted region, not
// a Clear-polarity object: its interior is transparent.
func (t ApertureTemplate) Realize(params []float64, lines LineRange) (geom.Area, error) {
	switch t.Kind {
	case TemplateCircle:
		return realizeCircle(params, lines)
	case TemplateRectangle:
		return realizeRectangle(params, lines)
	case TemplateObround:
		return realizeObround(params, lines)
	case TemplatePolygon:
		return realizePolygon(params, lines)
	case TemplateMacro:
		return evaluateMacro(t.MacroBody, params, lines)
	default:
		return geom.Area{}, newFault(KindInvalidAperture, lines, "unknown template kind")
	}
}

func withOptionalHole(shape geom.Area, holeD float64, lines LineRange) (geom.Area, error) {
	if holeD <= 0 {
		return shape, nil
	}
	hole := geom.Circle(geom.Point{}, holeD)
	return shape.Subtract(hole), nil
}

func realizeCircle(params []float64, lines LineRange) (geom.Area, error) {
	if len(params) != 1 && len(params) != 2 {
		return geom.Area{}, newFault(KindInvalidAperture, lines, "Circle: expected 1 or 2 parameters, got %d", len(params))
	}
	d := params[0]
	shape := geom.Circle(geom.Point{}, d)
	hole := 0.0
	if len(params) == 2 {
		hole = params[1]
	}
	return withOptionalHole(shape, hole, lines)
}

func realizeRectangle(params []float64, lines LineRange) (geom.Area, error) {
	if len(params) != 2 && len(params) != 3 {
		return geom.Area{}, newFault(KindInvalidAperture, lines, "Rectangle: expected 2 or 3 parameters, got %d", len(params))
	}
	w, h := params[0], params[1]
	shape := geom.Rectangle(geom.Point{}, w, h)
	hole := 0.0
	if len(params) == 3 {
		hole = params[2]
	}
	return withOptionalHole(shape, hole, lines)
}

func realizeObround(params []float64, lines LineRange) (geom.Area, error) {
	if len(params) != 2 && len(params) != 3 {
		return geom.Area{}, newFault(KindInvalidAperture, lines, "Obround: expected 2 or 3 parameters, got %d", len(params))
	}
	w, h := params[0], params[1]
	shape := geom.Obround(geom.Point{}, w, h)
	hole := 0.0
	if len(params) == 3 {
		hole = params[2]
	}
	return withOptionalHole(shape, hole, lines)
}

func realizePolygon(params []float64, lines LineRange) (geom.Area, error) {
	if len(params) < 2 || len(params) > 4 {
		return geom.Area{}, newFault(KindInvalidAperture, lines, "Polygon: expected 2 to 4 parameters, got %d", len(params))
	}
	d := params[0]
	n := int(params[1])
	if n < 3 {
		return geom.Area{}, newFault(KindInvalidAperture, lines, "Polygon: vertex count must be >= 3, got %d", n)
	}
	theta0 := 0.0
	if len(params) >= 3 {
		theta0 = params[2]
	}
	shape := geom.RegularPolygon(geom.Point{}, d, n, theta0)
	hole := 0.0
	if len(params) == 4 {
		hole = params[3]
	}
	return withOptionalHole(shape, hole, lines)
}

// ParseApertureParams splits an AD command's 'p1Xp2X...' modifier string
// into doubles.
func ParseApertureParams(s string, lines LineRange) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "X")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, newFault(KindInvalidAperture, lines, "malformed aperture parameter %q", p)
		}
		out[i] = v
	}
	return out, nil
}
