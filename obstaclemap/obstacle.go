package obstaclemap

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

// noReturnEpsilon is the tolerance for recognizing the range_max sentinel distance.
const noReturnEpsilon = 1e-6

// Obstacle is one scan reading expressed in the robot frame.
type Obstacle struct {
	Point r3.Vector
	// Angle is the bearing in (-π, π].
	Angle float64
	// Distance is the measured range, or the scan's range_max when nothing was hit.
	Distance float64
}

// IsReturn reports whether the reading hit something, given the range_max sentinel.
func (o Obstacle) IsReturn(rangeMax float64) bool {
	return !utils.Float64AlmostEqual(o.Distance, rangeMax, noReturnEpsilon)
}

func (o Obstacle) String() string {
	return fmt.Sprintf("{(%.3f, %.3f) angle:%.4f dist:%.3f}", o.Point.X, o.Point.Y, o.Angle, o.Distance)
}

// BuildObstacles converts a scan into one obstacle per reading, in scan order, using tf to map
// sensor coordinates into the robot frame. It also returns the smallest finite range, +Inf if
// there is none.
func BuildObstacles(scan *lidar.Scan, tf spatialmath.Pose2D) ([]Obstacle, float64) {
	obstacles := make([]Obstacle, 0, scan.Len())
	for i, r := range scan.Ranges {
		angle := scan.Angle(i)
		dist := r
		if !scan.IsReturn(i) {
			dist = scan.RangeMax
		}
		obstacles = append(obstacles, Obstacle{
			Point:    tf.TransformPoint(spatialmath.PolarToPoint(dist, angle)),
			Angle:    spatialmath.NormalizeAngle(angle + tf.Theta),
			Distance: dist,
		})
	}
	return obstacles, scan.MinRange()
}

// Returns keeps only the obstacles that are actual hits.
func Returns(obstacles []Obstacle, rangeMax float64) []Obstacle {
	return lo.Filter(obstacles, func(o Obstacle, _ int) bool {
		return o.IsReturn(rangeMax)
	})
}

// Points projects obstacles to their positions.
func Points(obstacles []Obstacle) []r3.Vector {
	return lo.Map(obstacles, func(o Obstacle, _ int) r3.Vector {
		return o.Point
	})
}
