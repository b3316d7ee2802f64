package gerber

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gerberflow/geom"
	"gerberflow/macroexpr"
)

// evaluateMacro compiles and evaluates a macro body against a single set
// of actual parameters, folding every primitive into one accumulated Area
// via set union (exposure > 0) or set difference (exposure <= 0), in
// document order.
func evaluateMacro(body []string, params []float64, lines LineRange) (geom.Area, error) {
	vars := make(map[string]string, len(params))
	for i, p := range params {
		vars[fmt.Sprintf("$%d", i+1)] = formatMacroNumber(p)
	}

	shape := geom.Area{}
	for _, line := range body {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] == '0' && (len(line) == 1 || line[1] == ' ' || line[1] == ',') {
			continue // comment
		}
		if eq := strings.IndexByte(line, '='); eq >= 0 && strings.HasPrefix(line, "$") {
			name := strings.TrimSpace(line[:eq])
			if !isMacroVarName(name) {
				return geom.Area{}, newFault(KindInvalidMacro, lines, "malformed macro variable name %q", name)
			}
			rhs := strings.TrimSpace(line[eq+1:])
			v, err := evalMacroExpr(rhs, vars, lines)
			if err != nil {
				return geom.Area{}, err
			}
			if existing, ok := vars[name]; ok {
				// Redefinition with an identical value is accepted
				// silently (putIfAbsent semantics); anything else fails.
				existingV, _ := strconv.ParseFloat(existing, 64)
				if v != existingV {
					return geom.Area{}, newFault(KindInvalidMacro, lines, "macro variable %s redefined with a different value", name)
				}
				continue
			}
			vars[name] = formatMacroNumber(v)
			continue
		}

		fields := strings.Split(line, ",")
		code, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return geom.Area{}, newFault(KindInvalidMacro, lines, "malformed macro primitive code %q", fields[0])
		}
		nums := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := evalMacroExpr(strings.TrimSpace(f), vars, lines)
			if err != nil {
				return geom.Area{}, err
			}
			nums[i] = v
		}
		prim, err := realizeMacroPrimitive(code, nums, lines)
		if err != nil {
			return geom.Area{}, err
		}
		if prim.exposureOn {
			shape = shape.Add(prim.area)
		} else {
			shape = shape.Subtract(prim.area)
		}
	}
	return shape, nil
}

func isMacroVarName(s string) bool {
	if len(s) < 2 || s[0] != '$' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// substituteMacroVars replaces every $n reference with its bound value
// (longest variable name first, so $14 is replaced before $1), and any
// remaining unresolved $n with "0".
func substituteMacroVars(expr string, vars map[string]string) string {
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, n := range names {
		expr = strings.ReplaceAll(expr, n, vars[n])
	}
	expr = substituteUnresolvedVars(expr)
	return expr
}

// substituteUnresolvedVars replaces any remaining "$<digits>" token with
// "0".
func substituteUnresolvedVars(expr string) string {
	var b strings.Builder
	i := 0
	for i < len(expr) {
		if expr[i] == '$' {
			j := i + 1
			for j < len(expr) && expr[j] >= '0' && expr[j] <= '9' {
				j++
			}
			if j > i+1 {
				b.WriteByte('0')
				i = j
				continue
			}
		}
		b.WriteByte(expr[i])
		i++
	}
	return b.String()
}

func formatMacroNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func evalMacroExpr(expr string, vars map[string]string, lines LineRange) (float64, error) {
	substituted := substituteMacroVars(expr, vars)
	v, err := macroexpr.Evaluate(substituted)
	if err != nil {
		return 0, wrapFault(KindInvalidMacro, lines, err, "macro expression %q", expr)
	}
	return v, nil
}

type macroPrimitive struct {
	exposureOn bool
	area       geom.Area
}

func rotated(a geom.Area, rotDeg float64) geom.Area {
	if rotDeg == 0 {
		return a
	}
	return a.Transform(geom.Rotate(rotDeg))
}

// realizeMacroPrimitive builds one primitive's geometry, already rotated
// about the macro origin.
func realizeMacroPrimitive(code int, p []float64, lines LineRange) (macroPrimitive, error) {
	switch code {
	case 1: // Circle: exposure, d, cx, cy[, rot]
		if len(p) != 4 && len(p) != 5 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 1 (Circle): expected 4 or 5 parameters, got %d", len(p))
		}
		rot := 0.0
		if len(p) == 5 {
			rot = p[4]
		}
		shape := geom.Circle(geom.Point{X: p[2], Y: p[3]}, p[1])
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(shape, rot)}, nil

	case 2, 20: // Vector Line: exposure, w, x1, y1, x2, y2, rot
		if len(p) != 7 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive %d (Vector Line): expected 7 parameters, got %d", code, len(p))
		}
		shape := geom.StrokeLineButtCap(geom.Point{X: p[2], Y: p[3]}, geom.Point{X: p[4], Y: p[5]}, p[1])
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(shape, p[6])}, nil

	case 21: // Center Line: exposure, w, h, cx, cy, rot
		if len(p) != 6 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 21 (Center Line): expected 6 parameters, got %d", len(p))
		}
		shape := geom.Rectangle(geom.Point{X: p[3], Y: p[4]}, p[1], p[2])
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(shape, p[5])}, nil

	case 22: // Lower-Left Line (deprecated): exposure, w, h, llx, lly, rot
		if len(p) != 6 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 22 (Lower-Left Line): expected 6 parameters, got %d", len(p))
		}
		cx, cy := p[3]+p[1]/2, p[4]+p[2]/2
		shape := geom.Rectangle(geom.Point{X: cx, Y: cy}, p[1], p[2])
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(shape, p[5])}, nil

	case 4: // Outline: exposure, n, x0,y0, x1,y1, ..., xn,yn, rot
		if len(p) < 6 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 4 (Outline): too few parameters")
		}
		n := int(p[1])
		wantLen := 2 + 2*(n+1) + 1
		if len(p) != wantLen {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 4 (Outline): expected %d parameters for n=%d, got %d", wantLen, n, len(p))
		}
		pts := make([]geom.Point, n) // vertex n+1 (xn,yn) must equal vertex 0 and is dropped
		for i := 0; i < n; i++ {
			pts[i] = geom.Point{X: p[2+2*i], Y: p[3+2*i]}
		}
		rot := p[len(p)-1]
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(geom.AreaFromPolygon(pts), rot)}, nil

	case 5: // Polygon: exposure, n, cx, cy, d, rot
		if len(p) != 6 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 5 (Polygon): expected 6 parameters, got %d", len(p))
		}
		n := int(p[1])
		if n < 3 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 5 (Polygon): vertex count must be >= 3, got %d", n)
		}
		shape := geom.RegularPolygon(geom.Point{X: p[2], Y: p[3]}, p[4], n, 0)
		return macroPrimitive{exposureOn: p[0] > 0, area: rotated(shape, p[5])}, nil

	case 6: // Moire: cx, cy, outerD, ringThickness, ringGap, maxRings, crossThickness, crossLength, rot
		if len(p) != 9 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 6 (Moire): expected 9 parameters, got %d", len(p))
		}
		shape := moireShape(p[0], p[1], p[2], p[3], p[4], int(p[5]), p[6], p[7])
		return macroPrimitive{exposureOn: true, area: rotated(shape, p[8])}, nil

	case 7: // Thermal: cx, cy, outerD, innerD, gap, rot
		if len(p) != 6 {
			return macroPrimitive{}, newFault(KindInvalidMacro, lines, "primitive 7 (Thermal): expected 6 parameters, got %d", len(p))
		}
		shape := thermalShape(p[0], p[1], p[2], p[3], p[4])
		return macroPrimitive{exposureOn: true, area: rotated(shape, p[5])}, nil

	default:
		return macroPrimitive{}, newFault(KindInvalidMacro, lines, "unknown macro primitive code %d", code)
	}
}

// moireShape builds an alternating sequence of ring annuli plus a crosshair
// centered at (cx,cy) (primitive 6).
func moireShape(cx, cy, outerD, ringThickness, ringGap float64, maxRings int, crossThickness, crossLength float64) geom.Area {
	center := geom.Point{X: cx, Y: cy}
	shape := geom.Area{}
	outer := outerD
	for i := 0; i < maxRings && outer > 0; i++ {
		inner := outer - 2*ringThickness
		ring := geom.Circle(center, outer)
		if inner > 0 {
			ring = ring.Subtract(geom.Circle(center, inner))
		}
		shape = shape.Add(ring)
		outer = inner - 2*ringGap
	}
	shape = shape.Add(geom.Rectangle(center, crossLength, crossThickness))
	shape = shape.Add(geom.Rectangle(center, crossThickness, crossLength))
	return shape
}

// thermalShape builds an annulus between innerD and outerD with horizontal
// and vertical gap strokes removed, centered at (cx,cy) (primitive 7).
func thermalShape(cx, cy, outerD, innerD, gap float64) geom.Area {
	center := geom.Point{X: cx, Y: cy}
	annulus := geom.Circle(center, outerD)
	if innerD > 0 {
		annulus = annulus.Subtract(geom.Circle(center, innerD))
	}
	span := outerD * 1.5
	annulus = annulus.Subtract(geom.Rectangle(center, span, gap))
	annulus = annulus.Subtract(geom.Rectangle(center, gap, span))
	return annulus
}

// compileMacroBody validates that a freshly-collected AM body is
// structurally sane (non-empty) before it is registered as a template.
func compileMacroBody(lines []string, lr LineRange) ([]string, error) {
	if len(lines) == 0 {
		return nil, newFault(KindInvalidMacro, lr, "macro definition has no body")
	}
	return lines, nil
}
