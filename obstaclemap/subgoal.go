package obstaclemap

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/gapnav/motionplan/tpspace"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

// denominatorEpsilon guards the tangent circle radius against a vanishing denominator.
const denominatorEpsilon = 1e-9

// SubGoal returns the point to steer towards so the robot passes the gap boundary nearest to
// its path at the safe distance min(Radius+SafetyMargin, Width/2). The point is a tangent point
// of an arc from the origin to the safety circle around that boundary, or the gap midpoint
// when neither tangent point turns the right way.
func SubGoal(gap Gap, profile RobotProfile) (r3.Vector, error) {
	ds := math.Min(profile.SafeRadius(), gap.Width/2)

	midTraj := tpspace.NewTrajectory(gap.Mid)
	pl := midTraj.ClosestPoint(gap.Left.Point)
	pr := midTraj.ClosestPoint(gap.Right.Point)

	var pc r3.Vector
	var gamma float64
	if spatialmath.Distance(pl, gap.Left.Point) > ds && spatialmath.Distance(pr, gap.Right.Point) > ds {
		pc, gamma = gap.Left.Point, 1
		if gap.CloseRight {
			pc, gamma = gap.Right.Point, -1
		}
	} else {
		// Circumvent whichever side the robot reaches first along the way to the middle.
		if midTraj.ArcLength(pl) <= midTraj.ArcLength(pr) {
			pc, gamma = gap.Left.Point, 1
		} else {
			pc, gamma = gap.Right.Point, -1
		}
	}

	pt1, pt2 := tangentPoints(pc, ds)
	pcDir := spatialmath.Bearing(pc)

	subGoal := gap.Mid
	switch {
	case spatialmath.NormalizeAngle(spatialmath.Bearing(pt1)-pcDir)*gamma < 0:
		subGoal = pt1
	case spatialmath.NormalizeAngle(spatialmath.Bearing(pt2)-pcDir)*gamma < 0:
		subGoal = pt2
	}

	if !utils.IsFinite(subGoal.X) || !utils.IsFinite(subGoal.Y) {
		return r3.Vector{}, errors.Wrapf(ErrSubGoalFailed, "non-finite sub-goal for %v", gap)
	}
	return subGoal, nil
}

// tangentPoints returns the two candidate points where an arc leaving the origin along the X
// axis touches the circle of radius ds around pc.
func tangentPoints(pc r3.Vector, ds float64) (r3.Vector, r3.Vector) {
	radC := math.Hypot(pc.X, pc.Y)
	if radC <= ds {
		// The robot is already inside the safety circle; peel off at a fixed 45 degrees.
		const th = math.Pi / 4
		y := -radC * (1 - math.Cos(th))
		return r3.Vector{X: radC * math.Sin(th), Y: y}, r3.Vector{X: -radC * math.Sin(th), Y: y}
	}

	circleEq := pc.X*pc.X + pc.Y*pc.Y - ds*ds
	return tangentPoint(pc, circleEq, pc.Y+ds), tangentPoint(pc, circleEq, pc.Y-ds)
}

// tangentPoint finds the point of the circle of radius r = circleEq/(2*denom) centered at
// (0, r) that lies on the ray from its center through pc.
func tangentPoint(pc r3.Vector, circleEq, denom float64) r3.Vector {
	if math.Abs(denom) < denominatorEpsilon {
		return r3.Vector{X: pc.X}
	}
	r := circleEq / (2 * denom)
	mag := math.Hypot(pc.X, pc.Y-r)
	return r3.Vector{
		X: pc.X / mag * math.Abs(r),
		Y: r + (pc.Y-r)/mag*math.Abs(r),
	}
}
