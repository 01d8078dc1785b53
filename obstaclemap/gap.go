package obstaclemap

import (
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/gapnav/spatialmath"
)

// Gap is an opening between two obstacles. Right is the clockwise-most boundary and Left the
// counter-clockwise-most one.
type Gap struct {
	Right Obstacle
	Left  Obstacle
	Width float64
	Mid   r3.Vector
	// Front is true when sweeping counter-clockwise from Right to Left does not cross ±π.
	Front bool
	// CloseRight is set by the selector when the right boundary is nearer the target.
	CloseRight bool
}

// NewGap computes the derived fields of the gap between right and left.
func NewGap(right, left Obstacle) Gap {
	return Gap{
		Right: right,
		Left:  left,
		Width: spatialmath.Distance(right.Point, left.Point),
		Mid:   right.Point.Add(left.Point).Mul(0.5),
		Front: right.Angle <= left.Angle,
	}
}

// Contains reports whether angle lies within the gap's counter-clockwise span.
func (g Gap) Contains(angle float64) bool {
	return spatialmath.AngleBetween(angle, g.Right.Angle, g.Left.Angle)
}

func (g Gap) String() string {
	return fmt.Sprintf("gap{right:%v left:%v width:%.3f}", g.Right, g.Left, g.Width)
}
