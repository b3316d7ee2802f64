package macroexpr

import (
	"fmt"
	"math"
)

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("macroexpr: expected numeric argument, got %T", v)
	}
}

func mathSqrt(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("macroexpr: sqrt takes exactly one argument")
	}
	v, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	return math.Sqrt(v), nil
}

func mathSinDeg(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }
func mathCosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
func mathTanDeg(deg float64) float64 { return math.Tan(deg * math.Pi / 180) }

func mathTrig(args []interface{}, fn func(float64) float64) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("macroexpr: trig function takes exactly one argument")
	}
	v, err := toFloat(args[0])
	if err != nil {
		return nil, err
	}
	return fn(v), nil
}
