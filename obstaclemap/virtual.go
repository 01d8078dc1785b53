package obstaclemap

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/gapnav/motionplan/tpspace"
	"go.viam.com/gapnav/spatialmath"
)

// Verdict is the outcome of refining a gap.
type Verdict int

const (
	// VerdictAdmissible means the sub-goal of the final gap can be reached without touching
	// any obstacle.
	VerdictAdmissible Verdict = iota
	// VerdictBlocked means the final gap still has an obstacle between its boundaries on the
	// way to the sub-goal.
	VerdictBlocked
)

func (v Verdict) String() string {
	switch v {
	case VerdictAdmissible:
		return "admissible"
	case VerdictBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// VirtualGap is one refinement step.
type VirtualGap struct {
	Gap       Gap
	SubGoal   r3.Vector
	Clearance float64
}

// Resolution is the result of ResolveVirtualGaps. Gap, SubGoal and Clearance are those of the
// last step.
type Resolution struct {
	Verdict   Verdict
	Gap       Gap
	SubGoal   r3.Vector
	Clearance float64
	Steps     []VirtualGap
}

// ResolveVirtualGaps shrinks gap until the trajectory to its sub-goal clears every obstacle
// flanking it, then checks the obstacles inside it. Each iteration records a step. Refinement
// stops after len(obstacles)+1 iterations, in which case the resolution is blocked and
// ErrResolverExhausted is returned alongside it.
func ResolveVirtualGaps(gap Gap, obstacles []Obstacle, profile RobotProfile, rangeMax float64) (*Resolution, error) {
	points := Points(obstacles)
	returns := Returns(obstacles, rangeMax)
	res := &Resolution{Verdict: VerdictBlocked}

	virt := gap
	maxIterations := len(obstacles) + 1
	for iter := 0; iter < maxIterations; iter++ {
		interior, exterior := lo.FilterReject(returns, func(o Obstacle, _ int) bool {
			return virt.Contains(o.Angle)
		})
		flanking := lo.Filter(exterior, func(o Obstacle, _ int) bool {
			return spatialmath.NormalizeAngle(o.Angle-virt.Right.Angle) > 0 ||
				spatialmath.NormalizeAngle(o.Angle-virt.Left.Angle) < 0
		})

		subGoal, err := SubGoal(virt, profile)
		if err != nil {
			return nil, err
		}
		traj := tpspace.NewTrajectory(subGoal)
		step := VirtualGap{Gap: virt, SubGoal: subGoal, Clearance: traj.Clearance(points)}
		res.Steps = append(res.Steps, step)
		res.Gap, res.SubGoal, res.Clearance = step.Gap, step.SubGoal, step.Clearance

		clear, colliders := IsNavigable(traj, flanking, profile.Footprint)
		if clear {
			if ok, _ := IsNavigable(traj, interior, profile.Footprint); ok {
				res.Verdict = VerdictAdmissible
			}
			return res, nil
		}

		first := lo.MinBy(colliders, func(a, b Obstacle) bool {
			return traj.DistanceTo(a.Point) < traj.DistanceTo(b.Point)
		})
		virt = narrowGap(virt, first, exterior)
	}
	res.Verdict = VerdictBlocked
	return res, errors.Wrapf(ErrResolverExhausted, "after %d iterations", maxIterations)
}

// narrowGap replaces one boundary of virt with first, the side being the one first lies on as
// seen along the gap's middle. The other boundary becomes the exterior obstacle nearest first
// that lies beyond the kept boundary within a half turn, or stays unchanged when none does.
// Exact ties keep the earliest candidate in exterior order, with the opposite boundary last.
func narrowGap(virt Gap, first Obstacle, exterior []Obstacle) Gap {
	midAngle := spatialmath.Bearing(virt.Mid)
	inMid := func(p r3.Vector) r3.Vector {
		return spatialmath.ToFrame(r3.Vector{}, midAngle, p)
	}
	transFirst := inMid(first.Point)
	firstAngle := spatialmath.Bearing(transFirst)

	leftSide := transFirst.Y >= 0
	kept, opposite := virt.Left, virt.Right
	if leftSide {
		kept, opposite = virt.Right, virt.Left
	}

	candidates := make([]Obstacle, 0, len(exterior)+1)
	candidates = append(candidates, exterior...)
	candidates = append(candidates, opposite)

	keptAngle := spatialmath.Bearing(inMid(kept.Point))
	offset := func(angle float64) float64 {
		if leftSide {
			return firstAngle - angle
		}
		return angle - firstAngle
	}
	gamma := offset(keptAngle)

	other := kept
	minDist := spatialmath.Distance(kept.Point, first.Point)
	for _, c := range candidates {
		beta := offset(spatialmath.Bearing(inMid(c.Point)))
		d := spatialmath.Distance(c.Point, first.Point)
		if gamma < beta && beta < math.Pi && d < minDist {
			other, minDist = c, d
		}
	}

	narrowed := NewGap(first, other)
	if leftSide {
		narrowed = NewGap(other, first)
	}
	narrowed.CloseRight = virt.CloseRight
	return narrowed
}
