// Package spatialmath defines the planar geometry used by the navigation packages: angle
// normalization, 2D rigid transforms, and primitive intersection tests. Points are r3.Vectors
// with a zero Z component, matching the rest of the codebase.
package spatialmath

import (
	"math"
)

// NormalizeAngle wraps theta into (-π, π].
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	} else if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// Mod2Pi wraps theta into [0, 2π).
func Mod2Pi(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	// math.Mod of a tiny negative number can round back up to exactly 2π.
	if theta >= 2*math.Pi {
		theta = 0
	}
	return theta
}

// AngleBetween reports whether angle lies in the counter-clockwise sweep from right to left,
// inclusive on both ends. The sweep may cross the ±π seam.
func AngleBetween(angle, right, left float64) bool {
	return Mod2Pi(angle-right) <= Mod2Pi(left-right)
}

// Sign returns -1 for negative inputs and 1 otherwise.
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
