package obstaclemap

import (
	"math"

	"go.viam.com/gapnav/spatialmath"
)

// FilterGaps drops gaps contained in another gap of the same front/rear class and then gaps no
// wider than minWidth. Of several gaps spanning exactly the same angles only the first is kept.
// Filtering a filtered list returns it unchanged.
func FilterGaps(gaps []Gap, minWidth float64) []Gap {
	out := make([]Gap, 0, len(gaps))
	for i, gi := range gaps {
		if isRedundant(gaps, i) {
			continue
		}
		if gi.Width > minWidth {
			out = append(out, gi)
		}
	}
	return out
}

func isRedundant(gaps []Gap, i int) bool {
	gi := gaps[i]
	ri, li := classAngles(gi)
	for j, gj := range gaps {
		if j == i || gj.Front != gi.Front {
			continue
		}
		rj, lj := classAngles(gj)
		if ri < rj || li > lj {
			continue
		}
		if ri == rj && li == lj && j > i {
			// Same span, the earlier one survives.
			continue
		}
		return true
	}
	return false
}

// classAngles returns the boundary angles in a frame where the gap does not straddle the seam:
// unchanged for front gaps, re-centred by π for rear gaps.
func classAngles(g Gap) (float64, float64) {
	if g.Front {
		return g.Right.Angle, g.Left.Angle
	}
	return spatialmath.NormalizeAngle(g.Right.Angle - math.Pi), spatialmath.NormalizeAngle(g.Left.Angle - math.Pi)
}
