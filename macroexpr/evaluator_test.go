package macroexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateArithmetic(t *testing.T) {
	v, err := Evaluate("1+2*3")
	require.NoError(t, err)
	assert.InDelta(t, 7, v, 1e-9)
}

func TestEvaluateMacroMultiply(t *testing.T) {
	v, err := Evaluate("2x3")
	require.NoError(t, err)
	assert.InDelta(t, 6, v, 1e-9)
}

func TestEvaluateCaretPower(t *testing.T) {
	v, err := Evaluate("2^10")
	require.NoError(t, err)
	assert.InDelta(t, 1024, v, 1e-9)
}

func TestEvaluateSqrtParenthesized(t *testing.T) {
	v, err := Evaluate("sqrt(16)")
	require.NoError(t, err)
	assert.InDelta(t, 4, v, 1e-9)
}

func TestEvaluateSqrtBareFactor(t *testing.T) {
	v, err := Evaluate("sqrt16")
	require.NoError(t, err)
	assert.InDelta(t, 4, v, 1e-9)
}

func TestEvaluateTrigDegrees(t *testing.T) {
	v, err := Evaluate("sin(90)")
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-9)

	v, err = Evaluate("cos(0)")
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-9)
}

func TestEvaluateCombined(t *testing.T) {
	v, err := Evaluate("1.5x(2+sqrt(4))")
	require.NoError(t, err)
	assert.InDelta(t, 6, v, 1e-9)
}

func TestEvaluateUnaryMinus(t *testing.T) {
	v, err := Evaluate("-5+3")
	require.NoError(t, err)
	assert.InDelta(t, -2, v, 1e-9)
}
