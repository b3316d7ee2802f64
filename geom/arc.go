package geom

import (
	"errors"
	"math"
)

// ErrInvalidArc is returned when single-quadrant mode has no sign
// combination of (I,J) that yields a candidate center with |extent| <= 90°.
var ErrInvalidArc = errors.New("geom: no single-quadrant arc candidate satisfies |extent| <= 90 degrees")

// ArcParams is the resolved geometry of a G02/G03 arc move.
type ArcParams struct {
	Center                        Point
	Radius                        float64
	StartAngleDeg, ExtentAngleDeg float64
}

// ComputeArcParameters is the arc parameter solver: given the current
// point, the commanded end point, the relative center offset (I,J), the
// sweep direction, and whether single-quadrant (legacy) mode is in
// effect, it resolves a center, radius, and signed start/extent angles.
//
// Angle convention: positive Y is up; a negative extent sweeps clockwise.
// For a degenerate arc (current == end) in multi-quadrant mode, the swept
// extent is a full circle: +360° CCW, -360° CW.
func ComputeArcParameters(current, end Point, i, j float64, clockwise, singleQuadrant bool) (ArcParams, error) {
	r := math.Hypot(i, j)

	if !singleQuadrant {
		center := Point{current.X + i, current.Y + j}
		params := arcFromCenter(current, end, center, r, clockwise)
		if current != end {
			params = precisionCorrect(current, end, params, clockwise, true)
		}
		return params, nil
	}

	if current == end {
		// Zero extent means no arc in single-quadrant mode; the caller
		// degrades a zero-extent D01 to a flash.
		return ArcParams{Center: Point{current.X + i, current.Y + j}, Radius: r}, nil
	}

	signs := [4][2]float64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	var best *ArcParams
	bestErr := math.Inf(1)
	for _, s := range signs {
		center := Point{current.X + i*s[0], current.Y + j*s[1]}
		raw := arcRaw(current, end, center, r)
		if raw.ExtentAngleDeg == 0 || math.Abs(raw.ExtentAngleDeg) > 90 {
			continue
		}
		derr := math.Abs(r - end.Dist(center))
		if derr < bestErr {
			p := raw
			best = &p
			bestErr = derr
		}
	}
	if best == nil {
		return ArcParams{}, ErrInvalidArc
	}
	params := *best
	if current != end {
		params = precisionCorrect(current, end, params, clockwise, false)
	}
	return params, nil
}

// arcRaw computes the unwrapped start/stop/extent for a candidate center,
// with no ±360 direction correction applied.
func arcRaw(current, end, center Point, r float64) ArcParams {
	start := normalizeDeg(math.Atan2(current.Y-center.Y, current.X-center.X) * 180 / math.Pi)
	stop := normalizeDeg(math.Atan2(end.Y-center.Y, end.X-center.X) * 180 / math.Pi)
	return ArcParams{Center: center, Radius: r, StartAngleDeg: start, ExtentAngleDeg: stop - start}
}

// arcFromCenter applies the multi-quadrant direction correction: a
// clockwise sweep always ends up with a negative extent, a
// counterclockwise sweep with a positive one.
func arcFromCenter(current, end, center Point, r float64, clockwise bool) ArcParams {
	p := arcRaw(current, end, center, r)
	if clockwise {
		if p.ExtentAngleDeg >= 0 {
			p.ExtentAngleDeg -= 360
		}
	} else {
		if p.ExtentAngleDeg <= 0 {
			p.ExtentAngleDeg += 360
		}
	}
	return p
}

// precisionCorrect refines a limited-precision center: given current !=
// end, it moves the candidate center onto the perpendicular bisector of
// current-end at the averaged radius, choosing the intersection nearer
// the original center.
// When wrap is true (multi-quadrant) the refined angles get the ±360
// direction correction reapplied; single-quadrant mode leaves the raw,
// already-bounded extent alone.
func precisionCorrect(current, end Point, params ArcParams, clockwise, wrap bool) ArcParams {
	c := params.Center
	rPrime := (current.Dist(c) + end.Dist(c)) / 2

	mid := Point{(current.X + end.X) / 2, (current.Y + end.Y) / 2}
	chordLen := current.Dist(end)
	halfChord := chordLen / 2

	h := rPrime*rPrime - halfChord*halfChord
	if h < 0 {
		h = 0
	}
	srt := math.Sqrt(h)

	var ux, uy float64
	if chordLen != 0 {
		ux, uy = (end.X-current.X)/chordLen, (end.Y-current.Y)/chordLen
	}
	px, py := -uy, ux // unit perpendicular to the chord

	cand1 := Point{mid.X + px*srt, mid.Y + py*srt}
	cand2 := Point{mid.X - px*srt, mid.Y - py*srt}

	nc := cand1
	if cand2.Dist(c) < cand1.Dist(c) {
		nc = cand2
	}

	if wrap {
		return arcFromCenter(current, end, nc, rPrime, clockwise)
	}
	return arcRaw(current, end, nc, rPrime)
}

func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
