package gerber

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFSLeadingOmission(t *testing.T) {
	f, err := parseFS("LAX24Y36", LineRange{})
	require.NoError(t, err)
	assert.False(t, f.OmitTrailing)
	assert.Equal(t, 2, f.XInt)
	assert.Equal(t, 4, f.XFrac)
	assert.Equal(t, 3, f.YInt)
	assert.Equal(t, 6, f.YFrac)
	assert.True(t, f.Set())
}

func TestParseFSTrailingOmission(t *testing.T) {
	f, err := parseFS("TAX24Y24", LineRange{})
	require.NoError(t, err)
	assert.True(t, f.OmitTrailing)
}

func TestParseFSRejectsNonDefaultForms(t *testing.T) {
	for _, body := range []string{
		"LIX24Y24",   // incremental
		"DAX24Y24",   // unknown zero-omission mode
		"LAX24",      // missing Y
		"LAX2Y24",    // short digit counts
		"LAX24Y24N2", // trailing junk
		"LAX74Y24",   // digit count out of [0,6]
	} {
		_, err := parseFS(body, LineRange{})
		require.Error(t, err, "FS%s should be rejected", body)
		var gerr *GerberFormatError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, KindUnsupportedFormat, gerr.Kind())
	}
}

func TestParseCoordinateLeadingOmission(t *testing.T) {
	v, err := ParseCoordinate("-1234", 2, 4, false)
	require.NoError(t, err)
	assert.InDelta(t, -0.1234, v, 1e-12)

	v, err = ParseCoordinate("50000", 2, 4, false)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 1e-12)

	v, err = ParseCoordinate("+7", 2, 4, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.0007, v, 1e-12)
}

func TestParseCoordinateTrailingOmission(t *testing.T) {
	// "12" in 2.4 trailing-omission pads right to 120000 -> 12.0.
	v, err := ParseCoordinate("12", 2, 4, true)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, v, 1e-12)

	v, err = ParseCoordinate("-12", 2, 4, true)
	require.NoError(t, err)
	assert.InDelta(t, -12.0, v, 1e-12)

	// A full-width literal parses the same under either mode.
	v, err = ParseCoordinate("123456", 2, 4, true)
	require.NoError(t, err)
	assert.InDelta(t, 12.3456, v, 1e-12)
}

func TestParseCoordinateRejectsNonDigits(t *testing.T) {
	for _, s := range []string{"", "+", "12a4", "1.5", "--3"} {
		_, err := ParseCoordinate(s, 2, 4, false)
		require.Error(t, err, "coordinate %q should be rejected", s)
	}
}

// Round-trip: for any |v| < 10^(intDigits+fracDigits) under leading-zero
// omission, parsing the decimal rendering of v yields v * 10^-fracDigits.
func TestParseCoordinateRoundTrip(t *testing.T) {
	const sigma, phi = 2, 4
	for _, v := range []int64{0, 1, -1, 42, -9999, 123456, -123456, 999999} {
		if math.Abs(float64(v)) >= math.Pow(10, sigma+phi) {
			continue
		}
		s := fmt.Sprintf("%d", v)
		got, err := ParseCoordinate(s, sigma, phi, false)
		require.NoError(t, err)
		want := float64(v) * math.Pow(10, -phi)
		assert.InDelta(t, want, got, math.Abs(want)*1e-12+1e-15)
	}
}
