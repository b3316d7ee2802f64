package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// floatApprox tolerates the ULP-level noise introduced by trig-based
// flattening when comparing Point/Bounds values structurally.
var floatApprox = cmpopts.EquateApprox(0, 1e-6)

func TestAffineTransformCompose(t *testing.T) {
	t1 := Translate(1, 0)
	t2 := Rotate(90)
	composed := t2.Compose(t1) // apply t1 (translate) then t2 (rotate)
	p := composed.Apply(Point{0, 0})
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
}

func TestAreaUnionSubtractIdentity(t *testing.T) {
	a := Rectangle(Point{0, 0}, 10, 10)
	empty := EmptyArea()
	assert.True(t, a.Add(empty).Bounds() == a.Bounds())
	assert.True(t, a.Subtract(empty).Bounds() == a.Bounds())
}

func TestSquareAnnulus(t *testing.T) {
	outer := Rectangle(Point{5, 5}, 10, 10)
	inner := Rectangle(Point{5, 5}, 4, 4)
	annulus := outer.Subtract(inner)
	b := annulus.Bounds()
	require.False(t, b.Empty())
	assert.InDelta(t, 0, b.MinX, 1e-9)
	assert.InDelta(t, 10, b.MaxX, 1e-9)
}

func TestComputeArcParametersFullCircleMultiQuadrant(t *testing.T) {
	current := Point{0, 0}
	center := Point{5, 0}
	end := current

	ccw, err := ComputeArcParameters(current, end, 5, 0, false, false)
	require.NoError(t, err)
	assert.InDelta(t, 360, ccw.ExtentAngleDeg, 1e-9)
	assert.Equal(t, center, ccw.Center)

	cw, err := ComputeArcParameters(current, end, 5, 0, true, false)
	require.NoError(t, err)
	assert.InDelta(t, -360, cw.ExtentAngleDeg, 1e-9)
}

func TestComputeArcParametersEquidistantAfterCorrection(t *testing.T) {
	current := Point{0, 0}
	end := Point{5, 0}

	params, err := ComputeArcParameters(current, end, 0, 5, false, true)
	require.NoError(t, err)

	dCur := current.Dist(params.Center)
	dEnd := end.Dist(params.Center)
	assert.InDelta(t, dCur, dEnd, 1e-6)
	assert.InDelta(t, params.Radius, dCur, 1e-6)
}

func TestComputeArcParametersNoCandidate(t *testing.T) {
	current := Point{0, 0}
	end := Point{-100, 0}
	_, err := ComputeArcParameters(current, end, 1, 0, false, true)
	assert.ErrorIs(t, err, ErrInvalidArc)
}

func TestRegularPolygonVertexCount(t *testing.T) {
	p := RegularPolygon(Point{0, 0}, 10, 6, 0)
	cs := p.Contours()
	require.Len(t, cs, 1)
	assert.Len(t, cs[0], 6)
}

func TestStrokeLineRoundCapDegenerate(t *testing.T) {
	a := StrokeLineRoundCap(Point{0, 0}, Point{0, 0}, 2)
	assert.False(t, a.IsEmpty())
}

func TestArcPolylineMonotonic(t *testing.T) {
	pts := ArcPolyline(Point{0, 0}, 5, 0, 90)
	require.True(t, len(pts) >= 2)
	first, last := pts[0], pts[len(pts)-1]
	assert.InDelta(t, 5, first.X, 1e-9)
	assert.InDelta(t, 0, first.Y, 1e-9)
	assert.InDelta(t, 0, last.X, 1e-6)
	assert.InDelta(t, 5, last.Y, 1e-6)
}

func TestScaleMagnitude(t *testing.T) {
	tr := Scale(-2, 2)
	assert.InDelta(t, 4, tr.ScaleMagnitude(), 1e-9)
}

func TestBoundsDegenerate(t *testing.T) {
	b := Bounds{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}
	assert.True(t, b.Degenerate())
	b2 := Bounds{MinX: 1, MinY: 1, MaxX: 1, MaxY: 2}
	assert.False(t, b2.Degenerate())
}

func TestNormalizeDeg(t *testing.T) {
	assert.InDelta(t, 10, normalizeDeg(370), 1e-9)
	assert.InDelta(t, 350, normalizeDeg(-10), 1e-9)
	assert.InDelta(t, 0, math.Mod(normalizeDeg(360), 360), 1e-9)
}

// TestArcParametersStructuralDiff uses go-cmp rather than per-field
// assertions to compare the full resolved ArcParams for a single-quadrant
// quarter circle from (5,0) to (0,5) around (5,5).
func TestArcParametersStructuralDiff(t *testing.T) {
	got, err := ComputeArcParameters(Point{5, 0}, Point{0, 5}, 0, 5, false, true)
	require.NoError(t, err)

	want := ArcParams{Center: Point{5, 5}, Radius: 5, StartAngleDeg: 270, ExtentAngleDeg: -90}
	if diff := cmp.Diff(want, got, floatApprox); diff != "" {
		t.Errorf("ArcParams mismatch (-want +got):\n%s", diff)
	}
}

// TestArcPolylineStructuralDiff compares a flattened quarter-arc's endpoints
// against the expected Points using go-cmp's approximate float equation.
func TestArcPolylineStructuralDiff(t *testing.T) {
	pts := ArcPolyline(Point{0, 0}, 5, 0, 90)
	got := []Point{pts[0], pts[len(pts)-1]}
	want := []Point{{5, 0}, {0, 5}}
	if diff := cmp.Diff(want, got, floatApprox); diff != "" {
		t.Errorf("arc endpoints mismatch (-want +got):\n%s", diff)
	}
}
