package gerber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func macroFlashSrc(macroDef, adParams string) string {
	return strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		macroDef,
		"%ADD10MAC," + adParams + "*%",
		"D10*",
		"X0Y0D03*",
		"M02*",
		"",
	}, "\n")
}

func TestMacroCircleWithParameters(t *testing.T) {
	src := macroFlashSrc("%AMMAC*1,1,$1,0,0*%", "2")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, -1, b.MinX, 1e-6)
	assert.InDelta(t, 1, b.MaxX, 1e-6)
}

func TestMacroVariableDefinition(t *testing.T) {
	// $3 is derived from the actual parameters; the primitive uses it as
	// the circle diameter.
	src := macroFlashSrc("%AMMAC*$3=$1+$2*1,1,$3,0,0*%", "1X3")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 4, b.Width(), 1e-6)
}

func TestMacroUnresolvedVariableSubstitutesZero(t *testing.T) {
	// $9 is never bound: the circle center offset collapses to (0,0).
	src := macroFlashSrc("%AMMAC*1,1,$1,$9,$9*%", "2")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 0, (b.MinX+b.MaxX)/2, 1e-6)
	assert.InDelta(t, 0, (b.MinY+b.MaxY)/2, 1e-6)
}

func TestMacroVariableRedefinitionRejected(t *testing.T) {
	src := macroFlashSrc("%AMMAC*$2=1*$2=2*1,1,$2,0,0*%", "5")
	err := parseErr(t, src)
	var gerr *GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidMacro, gerr.Kind())
}

func TestMacroVariableIdenticalRedefinitionAccepted(t *testing.T) {
	src := macroFlashSrc("%AMMAC*$2=1*$2=1*1,1,$2,0,0*%", "5")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
}

func TestMacroCommentLineIgnored(t *testing.T) {
	src := macroFlashSrc("%AMMAC*0 a plain donut*1,1,$1,0,0*%", "2")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
}

func TestMacroExposureOffSubtracts(t *testing.T) {
	// A dark disc with a smaller transparent disc removed: the hole is not
	// a Clear object, it is simply absent from the area.
	src := macroFlashSrc("%AMMAC*1,1,$1,0,0*1,0,$2,0,0*%", "4X2")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	obj := result.Stream.Objects[0]
	assert.Equal(t, PolarityDark, obj.Polarity)
	// The hole leaves two contours: outer boundary and inner ring.
	assert.GreaterOrEqual(t, len(obj.Area.Contours()), 2)
}

func TestMacroVectorLineRotation(t *testing.T) {
	// A horizontal bar rotated 90 degrees about the macro origin becomes
	// vertical.
	src := macroFlashSrc("%AMMAC*20,1,0.2,0,0,4,0,90*%", "")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 4, b.Height(), 1e-6)
	assert.InDelta(t, 0.2, b.Width(), 1e-6)
}

func TestMacroOutlineParameterCountRejected(t *testing.T) {
	// n=3 requires 4 vertex pairs plus exposure, n, and rot: 11 values.
	src := macroFlashSrc("%AMMAC*4,1,3,0,0,1,0,1,1,0*%", "")
	err := parseErr(t, src)
	var gerr *GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidMacro, gerr.Kind())
}

func TestMacroOutlineClosedPolygon(t *testing.T) {
	src := macroFlashSrc("%AMMAC*4,1,4,-1,-1,1,-1,1,1,-1,1,-1,-1,0*%", "")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 2, b.Width(), 1e-6)
	assert.InDelta(t, 2, b.Height(), 1e-6)
}

func TestMacroPolygonPrimitive(t *testing.T) {
	src := macroFlashSrc("%AMMAC*5,1,6,0,0,2,0*%", "")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 2, b.Width(), 1e-3)
}

func TestMacroThermalPrimitive(t *testing.T) {
	src := macroFlashSrc("%AMMAC*7,0,0,2,1,0.2,0*%", "")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	obj := result.Stream.Objects[0]
	b := obj.Area.Bounds()
	// The gaps remove the disc's axis extremes: the widest remaining point
	// sits at |y| = gap/2, so the width is 2*sqrt(1 - 0.1^2) ~= 1.990.
	assert.InDelta(t, 1.990, b.Width(), 1e-3)
	// The gap strokes split the annulus into four pads.
	assert.GreaterOrEqual(t, len(obj.Area.Contours()), 4)
}

func TestMacroMoirePrimitive(t *testing.T) {
	src := macroFlashSrc("%AMMAC*6,0,0,4,0.4,0.3,3,0.1,5,0*%", "")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	// The crosshair is longer than the outermost ring.
	assert.InDelta(t, 5, b.Width(), 1e-3)
}

func TestMacroUnknownPrimitiveRejected(t *testing.T) {
	src := macroFlashSrc("%AMMAC*99,1,1*%", "")
	err := parseErr(t, src)
	var gerr *GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidMacro, gerr.Kind())
}

func TestMacroMultiplicationOperator(t *testing.T) {
	src := macroFlashSrc("%AMMAC*1,1,$1x2,0,0*%", "1.5")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	b := result.Stream.Objects[0].Area.Bounds()
	assert.InDelta(t, 3, b.Width(), 1e-6)
}

func TestUnknownTemplateRejected(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\n%ADD10NOSUCH,1*%\nM02*\n"
	err := parseErr(t, src)
	var gerr *GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidAperture, gerr.Kind())
}

func TestApertureIDBelowTenRejected(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\n%ADD09C,1*%\nM02*\n"
	err := parseErr(t, src)
	var gerr *GerberFormatError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, KindInvalidAperture, gerr.Kind())
}
