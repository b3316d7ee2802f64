package gerber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeDictionaryFilterType(t *testing.T) {
	d := NewAttributeDictionary()
	d.Set(Attribute{Type: AttributeAperture, Name: ".AperFunction", Values: []string{"ViaPad"}})
	d.Set(Attribute{Type: AttributeObject, Name: ".N", Values: []string{"GND"}})

	apertures := d.FilterType(AttributeAperture)
	assert.Equal(t, 1, apertures.Len())
	_, ok := apertures.Get(".N")
	assert.False(t, ok)

	objects := d.FilterType(AttributeObject)
	assert.Equal(t, 1, objects.Len())
}

func TestAttributeDictionaryMergePrecedence(t *testing.T) {
	base := NewAttributeDictionary()
	base.Set(Attribute{Type: AttributeAperture, Name: ".P", Values: []string{"from-aperture"}})
	over := NewAttributeDictionary()
	over.Set(Attribute{Type: AttributeObject, Name: ".P", Values: []string{"from-object"}})

	merged := base.Merge(over)
	got, ok := merged.Get(".P")
	require.True(t, ok)
	assert.Equal(t, []string{"from-object"}, got.Values)
	// Merge does not mutate its receiver.
	orig, _ := base.Get(".P")
	assert.Equal(t, []string{"from-aperture"}, orig.Values)
}

func TestAttributeDictionaryCloneIsDeep(t *testing.T) {
	d := NewAttributeDictionary()
	d.Set(Attribute{Type: AttributeObject, Name: ".C", Values: []string{"R1"}})
	c := d.Clone()
	d.Set(Attribute{Type: AttributeObject, Name: ".C", Values: []string{"R2"}})
	got, _ := c.Get(".C")
	assert.Equal(t, []string{"R1"}, got.Values)
}

func TestTDDeletesOneAttribute(t *testing.T) {
	src := strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		"%ADD10C,1*%",
		"%TO.C,R1*%",
		"%TO.N,GND*%",
		"%TD.C*%",
		"D10*",
		"X0Y0D03*",
		"M02*",
		"",
	}, "\n")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	attrs := result.Stream.Objects[0].Attributes
	_, ok := attrs.Get(".C")
	assert.False(t, ok)
	n, ok := attrs.Get(".N")
	require.True(t, ok)
	assert.Equal(t, []string{"GND"}, n.Values)
}

func TestBareTDClearsAllAttributes(t *testing.T) {
	src := strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		"%ADD10C,1*%",
		"%TO.C,R1*%",
		"%TD*%",
		"D10*",
		"X0Y0D03*",
		"M02*",
		"",
	}, "\n")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	assert.Equal(t, 0, result.Stream.Objects[0].Attributes.Len())
}

// Aperture attributes are captured at AD time: attributes added after the
// aperture is defined do not retroactively attach to it.
func TestApertureAttributesSnapshotAtDefinition(t *testing.T) {
	src := strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		"%TA.AperFunction,ViaPad*%",
		"%ADD10C,1*%",
		"%TA.AperFunction,SMDPad*%",
		"%ADD11C,1*%",
		"D10*",
		"X0Y0D03*",
		"D11*",
		"X10000Y0D03*",
		"M02*",
		"",
	}, "\n")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 2)
	first, _ := result.Stream.Objects[0].Attributes.Get(".AperFunction")
	assert.Equal(t, []string{"ViaPad"}, first.Values)
	second, _ := result.Stream.Objects[1].Attributes.Get(".AperFunction")
	assert.Equal(t, []string{"SMDPad"}, second.Values)
}

// Block aperture attributes are a snapshot at AB open: mutations between
// open and close do not leak in.
func TestBlockAttributesSnapshotAtOpen(t *testing.T) {
	src := strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		"%ADD10C,1*%",
		"%TA.AperFunction,ViaPad*%",
		"%ABD100*%",
		"%TA.AperFunction,SMDPad*%",
		"D10*",
		"X0Y0D03*",
		"%AB*%",
		"D100*",
		"X0Y0D03*",
		"M02*",
		"",
	}, "\n")
	result := mustParse(t, src)
	require.Len(t, result.Stream.Objects, 1)
	got, ok := result.Stream.Objects[0].Attributes.Get(".AperFunction")
	require.True(t, ok)
	assert.Equal(t, []string{"ViaPad"}, got.Values)
}

func TestAttributeValuesWithCommasPreserved(t *testing.T) {
	src := strings.Join([]string{
		"%FSLAX24Y24*%",
		"%MOMM*%",
		"%TF.FileFunction,Soldermask,Top*%",
		"M02*",
		"",
	}, "\n")
	result := mustParse(t, src)
	a, ok := result.FileAttributes.Get(".FileFunction")
	require.True(t, ok)
	assert.Equal(t, []string{"Soldermask", "Top"}, a.Values)
}
