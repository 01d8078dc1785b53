// Package utils contains small helpers shared by the gapnav packages.
package utils

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Epsilon is the tolerance used when comparing geometric quantities.
const Epsilon = 1e-9

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return scalar.EqualWithinAbs(a, b, epsilon)
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}

// IsFinite is false for NaN and both infinities.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
