package obstaclemap

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/gapnav/pointcloud"
)

var (
	gapsColor        = color.NRGBA{R: 0, G: 160, B: 255, A: 255}
	closestGapColor  = color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	virtualGapColor  = color.NRGBA{R: 255, G: 140, B: 0, A: 255}
	subGoalColor     = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	blockedGoalColor = color.NRGBA{R: 128, G: 0, B: 128, A: 255}
)

// GapsCloud holds both boundaries of every gap in order, each point valued with its gap's index.
// A boundary shared by two gaps appears once per gap.
func GapsCloud(gaps []Gap) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewSequence(2 * len(gaps))
	for i, g := range gaps {
		if err := setGap(pc, g, i, gapsColor); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// ClosestGapCloud holds the boundaries of the selected gap.
func ClosestGapCloud(g Gap, index int) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewSequence(2)
	if err := setGap(pc, g, index, closestGapColor); err != nil {
		return nil, err
	}
	return pc, nil
}

// VirtualGapsCloud holds the right boundary, left boundary and sub-goal of every refinement step
// in order, valued with the step number. Boundaries kept from one step to the next are repeated.
// The last sub-goal is colored by the verdict.
func VirtualGapsCloud(res *Resolution) (pointcloud.PointCloud, error) {
	pc := pointcloud.NewSequence(3 * len(res.Steps))
	for i, step := range res.Steps {
		if err := setGap(pc, step.Gap, i, virtualGapColor); err != nil {
			return nil, err
		}
		c := subGoalColor
		if i == len(res.Steps)-1 && res.Verdict == VerdictBlocked {
			c = blockedGoalColor
		}
		if err := setPoint(pc, step.SubGoal, i, c); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func setGap(pc pointcloud.PointCloud, g Gap, index int, c color.NRGBA) error {
	if err := setPoint(pc, g.Right.Point, index, c); err != nil {
		return err
	}
	return setPoint(pc, g.Left.Point, index, c)
}

func setPoint(pc pointcloud.PointCloud, p r3.Vector, index int, c color.NRGBA) error {
	if err := pc.Set(p, pointcloud.NewMarker(c, index)); err != nil {
		return errors.Wrapf(err, "cannot add %v to cloud", p)
	}
	return nil
}
