package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Pose2D is a planar rigid transform: a rotation by Theta followed by a translation.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewZeroPose2D returns the identity transform.
func NewZeroPose2D() Pose2D {
	return Pose2D{}
}

// Point returns the translation component.
func (p Pose2D) Point() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

// TransformPoint maps pt from the child frame into the parent frame.
func (p Pose2D) TransformPoint(pt r3.Vector) r3.Vector {
	return Rotate(pt, p.Theta).Add(p.Point())
}

// Compose returns p followed by other, i.e. the transform that first applies other and then p.
func (p Pose2D) Compose(other Pose2D) Pose2D {
	pt := p.TransformPoint(other.Point())
	return Pose2D{X: pt.X, Y: pt.Y, Theta: NormalizeAngle(p.Theta + other.Theta)}
}

// Invert returns the inverse transform.
func (p Pose2D) Invert() Pose2D {
	pt := Rotate(p.Point(), -p.Theta)
	return Pose2D{X: -pt.X, Y: -pt.Y, Theta: NormalizeAngle(-p.Theta)}
}

// AlmostEqual compares two poses component-wise.
func (p Pose2D) AlmostEqual(other Pose2D, epsilon float64) bool {
	return math.Abs(p.X-other.X) <= epsilon &&
		math.Abs(p.Y-other.Y) <= epsilon &&
		math.Abs(NormalizeAngle(p.Theta-other.Theta)) <= epsilon
}

func (p Pose2D) String() string {
	return fmt.Sprintf("{X:%.4f Y:%.4f Theta:%.4f}", p.X, p.Y, p.Theta)
}
