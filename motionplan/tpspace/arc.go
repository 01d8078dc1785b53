// Package tpspace defines the constant-curvature trajectories a differential drive robot
// follows from its current pose to a planar goal.
package tpspace

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

// straightEpsilon is the lateral offset below which a goal is treated as lying on the travel
// axis.
const straightEpsilon = 1e-9

// Trajectory is the unique circular arc (or straight segment) that leaves the origin tangent
// to the X axis and ends at Goal. Goals with negative X are reached in reverse.
type Trajectory struct {
	goal   r3.Vector
	radius float64
}

// NewTrajectory returns the trajectory to goal, expressed in the robot frame.
func NewTrajectory(goal r3.Vector) *Trajectory {
	goal.Z = 0
	radius := math.Inf(1)
	if math.Abs(goal.Y) > straightEpsilon {
		radius = (goal.X*goal.X + goal.Y*goal.Y) / (2 * goal.Y)
	}
	return &Trajectory{goal: goal, radius: radius}
}

// Goal is the end point of the trajectory.
func (tr *Trajectory) Goal() r3.Vector {
	return tr.goal
}

// Radius is the signed turning radius: positive turns left, +Inf is straight.
func (tr *Trajectory) Radius() float64 {
	return tr.radius
}

// IsStraight reports whether the trajectory has no curvature.
func (tr *Trajectory) IsStraight() bool {
	return !utils.IsFinite(tr.radius)
}

// Direction is the bearing of the goal from the origin.
func (tr *Trajectory) Direction() float64 {
	return math.Atan2(tr.goal.Y, tr.goal.X)
}

// Center is the center of the turning circle. It is undefined for straight trajectories.
func (tr *Trajectory) Center() r3.Vector {
	return r3.Vector{Y: tr.radius}
}

// Forward reports whether the goal is reached driving forwards.
func (tr *Trajectory) Forward() bool {
	return tr.goal.X >= 0
}

// RotationSense is +1 when the robot circles the center counter-clockwise and -1 otherwise.
func (tr *Trajectory) RotationSense() float64 {
	dir := 1.
	if !tr.Forward() {
		dir = -1
	}
	return dir * spatialmath.Sign(tr.radius)
}

// GoalPose is the pose of the robot once it reaches the goal.
func (tr *Trajectory) GoalPose() spatialmath.Pose2D {
	theta := 0.
	if !tr.IsStraight() {
		theta = spatialmath.NormalizeAngle(2 * tr.Direction())
	}
	return spatialmath.Pose2D{X: tr.goal.X, Y: tr.goal.Y, Theta: theta}
}

// sweepTo returns the angle swept around the center, in the direction of travel, from the
// origin to p.
func (tr *Trajectory) sweepTo(p r3.Vector) float64 {
	c := tr.Center()
	start := math.Atan2(-c.Y, 0)
	end := math.Atan2(p.Y-c.Y, p.X-c.X)
	return spatialmath.Mod2Pi(tr.RotationSense() * (end - start))
}

// Sweep is the angle swept along the whole arc; zero for straight trajectories.
func (tr *Trajectory) Sweep() float64 {
	if tr.IsStraight() {
		return 0
	}
	return tr.sweepTo(tr.goal)
}

// Length is the distance travelled from the origin to the goal.
func (tr *Trajectory) Length() float64 {
	if tr.IsStraight() {
		return tr.goal.Norm()
	}
	return math.Abs(tr.radius) * tr.Sweep()
}

// ClosestPoint returns the point on the trajectory nearest to p.
func (tr *Trajectory) ClosestPoint(p r3.Vector) r3.Vector {
	p.Z = 0
	if tr.IsStraight() {
		return spatialmath.ClosestPointSegmentPoint(r3.Vector{}, tr.goal, p)
	}
	c := tr.Center()
	if spatialmath.Distance(p, c) < straightEpsilon {
		return r3.Vector{}
	}
	if tr.sweepTo(p) <= tr.Sweep() {
		return c.Add(p.Sub(c).Normalize().Mul(math.Abs(tr.radius)))
	}
	if spatialmath.Distance(p, r3.Vector{}) <= spatialmath.Distance(p, tr.goal) {
		return r3.Vector{}
	}
	return tr.goal
}

// DistanceTo is the distance from p to the nearest point of the trajectory.
func (tr *Trajectory) DistanceTo(p r3.Vector) float64 {
	return spatialmath.Distance(p, tr.ClosestPoint(p))
}

// ArcLength is the distance travelled along the trajectory until the point nearest to p.
func (tr *Trajectory) ArcLength(p r3.Vector) float64 {
	closest := tr.ClosestPoint(p)
	if tr.IsStraight() {
		return closest.Norm()
	}
	if closest.Norm() < straightEpsilon {
		return 0
	}
	return math.Abs(tr.radius) * math.Min(tr.sweepTo(closest), tr.Sweep())
}

// Clearance is the smallest distance from any of points to the trajectory, +Inf with no points.
func (tr *Trajectory) Clearance(points []r3.Vector) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	return floats.Min(lo.Map(points, func(p r3.Vector, _ int) float64 {
		return tr.DistanceTo(p)
	}))
}

// Sample returns n+1 evenly spaced points from the origin to the goal.
func (tr *Trajectory) Sample(n int) []r3.Vector {
	if n < 1 {
		n = 1
	}
	pts := make([]r3.Vector, 0, n+1)
	for i := 0; i <= n; i++ {
		frac := float64(i) / float64(n)
		if tr.IsStraight() {
			pts = append(pts, tr.goal.Mul(frac))
			continue
		}
		c := tr.Center()
		theta := math.Atan2(-c.Y, 0) + tr.RotationSense()*tr.Sweep()*frac
		pts = append(pts, c.Add(spatialmath.PolarToPoint(math.Abs(tr.radius), theta)))
	}
	return pts
}
