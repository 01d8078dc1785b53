package obstaclemap

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/gapnav/motionplan/tpspace"
	"go.viam.com/gapnav/spatialmath"
)

// IsNavigable sweeps the footprint along traj and reports whether no obstacle is hit. The
// colliding obstacles are always returned, each once, in input order.
func IsNavigable(traj *tpspace.Trajectory, obstacles []Obstacle, footprint []r3.Vector) (bool, []Obstacle) {
	colliders := []Obstacle{}
	for _, o := range obstacles {
		for i := range footprint {
			a := footprint[i]
			b := footprint[(i+1)%len(footprint)]
			if edgeSweepHits(traj, o.Point, a, b) {
				colliders = append(colliders, o)
				break
			}
		}
	}
	return len(colliders) == 0, colliders
}

// edgeSweepHits reports whether the footprint edge a-b passes over obs while the robot follows
// traj from the origin to its goal.
func edgeSweepHits(traj *tpspace.Trajectory, obs, a, b r3.Vector) bool {
	goal := traj.Goal()
	if traj.IsStraight() {
		sgnx := spatialmath.Sign(goal.X)
		// The edge point sharing the obstacle's lateral offset travels along y = obs.Y.
		pe, ok := spatialmath.LineSegmentIntersection(r3.Vector{Y: obs.Y}, r3.Vector{X: 1}, a, b)
		if !ok {
			return false
		}
		peGoal := pe.Add(goal)
		return sgnx*pe.X <= sgnx*obs.X && sgnx*obs.X <= sgnx*peGoal.X
	}

	c := traj.Center()
	delta := traj.RotationSense()
	atGoal := traj.GoalPose()
	// Edge points at the obstacle's distance from the center travel on the obstacle's circle.
	for _, pe := range spatialmath.SegmentCircleIntersections(a, b, c, spatialmath.Distance(c, obs)) {
		peGoal := atGoal.TransformPoint(pe)
		th := math.Atan2(pe.Y-c.Y, pe.X-c.X)
		obsAngle := spatialmath.Bearing(spatialmath.ToFrame(c, th, obs))
		goalAngle := spatialmath.Bearing(spatialmath.ToFrame(c, th, peGoal))
		if spatialmath.Mod2Pi(delta*obsAngle) <= spatialmath.Mod2Pi(delta*goalAngle) {
			return true
		}
	}
	return false
}
