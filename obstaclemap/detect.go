package obstaclemap

import (
	"math"

	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

// gapDetector walks the circular obstacle sequence looking for depth discontinuities.
type gapDetector struct {
	obstacles []Obstacle
	profile   RobotProfile
	rangeMax  float64
	gaps      []Gap
}

// DetectGaps finds every gap in the obstacle sequence. A counter-clockwise pass from the first
// reading reports gaps whose right side is the nearer endpoint, then a clockwise pass from the
// last reading reports gaps whose left side is. Both passes resume from the opposite boundary
// of each gap they find. The result may contain duplicates; see FilterGaps.
func DetectGaps(obstacles []Obstacle, profile RobotProfile, rangeMax float64) []Gap {
	n := len(obstacles)
	if n < 2 {
		return nil
	}
	d := &gapDetector{obstacles: obstacles, profile: profile, rangeMax: rangeMax}

	k := 0
	for steps := 0; steps < 2*n; steps++ {
		k = d.search(k, true)
		if k == 0 {
			break
		}
	}

	k = n - 1
	for steps := 0; steps < 2*n; steps++ {
		k = d.search(k, false)
		if k == n-1 {
			break
		}
	}
	return d.gaps
}

func (d *gapDetector) step(i int, right bool) int {
	n := len(d.obstacles)
	if right {
		return (i + 1) % n
	}
	return (n + i - 1) % n
}

// onSearchSide reports whether candidate lies strictly within the half turn on the search side
// of basis.
func onSearchSide(candidate, basis Obstacle, right bool) bool {
	delta := spatialmath.NormalizeAngle(candidate.Angle - basis.Angle)
	if right {
		return delta > 0
	}
	return delta < 0
}

// isDiscontinuity is true for a bilateral jump away from the basis or for a return followed by
// a no-return.
func (d *gapDetector) isDiscontinuity(basis, next Obstacle) bool {
	bilateral := spatialmath.Distance(basis.Point, next.Point) > d.profile.MinGapWidth &&
		basis.Distance < next.Distance
	unilateral := basis.IsReturn(d.rangeMax) && !next.IsReturn(d.rangeMax)
	return bilateral || unilateral
}

// search examines the basis at index k and returns the index to resume from.
func (d *gapDetector) search(k int, right bool) int {
	n := len(d.obstacles)
	basis := d.obstacles[k]
	nextIdx := d.step(k, right)
	next := d.obstacles[nextIdx]
	if !d.isDiscontinuity(basis, next) {
		return nextIdx
	}

	minVisibility := math.MaxFloat64
	minDist := math.MaxFloat64
	minIdx := -1
	basisDistSq := basis.Distance * basis.Distance

	for i, guard := nextIdx, 0; guard < n && onSearchSide(d.obstacles[i], basis, right); i, guard = d.step(i, right), guard+1 {
		candidate := d.obstacles[i]
		if !candidate.IsReturn(d.rangeMax) {
			continue
		}
		distp := spatialmath.Distance(basis.Point, candidate.Point)
		if distp < utils.Epsilon {
			continue
		}
		// Angle at the basis between the ray back to the sensor and the candidate.
		cosVis := (basisDistSq + distp*distp - candidate.Distance*candidate.Distance) / (2 * distp * basis.Distance)
		visibility := math.Acos(math.Max(-1, math.Min(1, cosVis)))
		if visibility < minVisibility {
			minVisibility = visibility
			if distp < minDist {
				minDist = distp
				minIdx = i
			}
		}
	}

	if minIdx == -1 {
		virtual := d.virtualBoundary(basis, next)
		if right {
			d.gaps = append(d.gaps, NewGap(basis, virtual))
		} else {
			d.gaps = append(d.gaps, NewGap(virtual, basis))
		}
		return nextIdx
	}

	if right {
		d.gaps = append(d.gaps, NewGap(basis, d.obstacles[minIdx]))
		if minIdx < k {
			return 0
		}
		return minIdx
	}
	d.gaps = append(d.gaps, NewGap(d.obstacles[minIdx], basis))
	if minIdx > k {
		return n - 1
	}
	return minIdx
}

// virtualBoundary synthesizes the far side of a gap one safe radius from the basis along the
// neighbour's bearing.
func (d *gapDetector) virtualBoundary(basis, next Obstacle) Obstacle {
	safe := d.profile.SafeRadius()
	pt := basis.Point.Add(spatialmath.PolarToPoint(safe, next.Angle))
	return Obstacle{Point: pt, Angle: next.Angle, Distance: pt.Norm()}
}
