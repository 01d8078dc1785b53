package obstaclemap

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/pointcloud"
	"go.viam.com/gapnav/spatialmath"
)

// cloudValues lists the value of every point of pc in order.
func cloudValues(pc pointcloud.PointCloud) []int {
	var values []int
	pc.Iterate(0, 0, func(p r3.Vector, d pointcloud.Data) bool {
		values = append(values, d.Value())
		return true
	})
	return values
}

func TestGapClouds(t *testing.T) {
	gaps := []Gap{gapAtDegrees(-30, 30, 5), gapAtDegrees(100, 140, 5)}

	pc, err := GapsCloud(gaps)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 4)
	d, ok := pc.At(gaps[1].Left.Point.X, gaps[1].Left.Point.Y, 0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, d.HasColor(), test.ShouldBeTrue)
	test.That(t, d.Value(), test.ShouldEqual, 1)

	pc, err = ClosestGapCloud(gaps[0], 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	res := &Resolution{
		Verdict: VerdictBlocked,
		Steps: []VirtualGap{
			{Gap: gaps[0], SubGoal: gaps[0].Mid},
			{Gap: gaps[1], SubGoal: gaps[1].Mid},
		},
	}
	pc, err = VirtualGapsCloud(res)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 6)
	d, ok = pc.At(gaps[1].Mid.X, gaps[1].Mid.Y, 0)
	test.That(t, ok, test.ShouldBeTrue)
	r, g, b := d.RGB255()
	test.That(t, []uint8{r, g, b}, test.ShouldResemble, []uint8{128, 0, 128})
	test.That(t, d.Value(), test.ShouldEqual, 1)

	empty, err := GapsCloud(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, empty.Size(), test.ShouldEqual, 0)
}

func TestVirtualGapsCloudKeepsSharedBoundaries(t *testing.T) {
	profile := RobotProfile{Radius: 0.5, SafetyMargin: 0.1, MinGapWidth: 1, Footprint: SquareFootprint(0.5)}
	right, left, pillar := obstacleAt(6, -3), obstacleAt(6, 3), obstacleAt(0.6, 0.45)
	gap := NewGap(right, left)
	gap.CloseRight = true

	res, err := ResolveVirtualGaps(gap, []Obstacle{right, left, pillar}, profile, 20)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(res.Steps), test.ShouldEqual, 2)
	// Both steps share the right boundary.
	test.That(t, res.Steps[1].Gap.Right, test.ShouldResemble, right)

	pc, err := VirtualGapsCloud(res)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 3*len(res.Steps))
	test.That(t, cloudValues(pc), test.ShouldResemble, []int{0, 0, 0, 1, 1, 1})

	pts := pointcloud.Points(pc)
	test.That(t, pts[0], test.ShouldResemble, right.Point)
	test.That(t, pts[1], test.ShouldResemble, left.Point)
	test.That(t, pts[2], test.ShouldResemble, res.Steps[0].SubGoal)
	test.That(t, pts[3], test.ShouldResemble, right.Point)
	test.That(t, pts[4], test.ShouldResemble, pillar.Point)
	test.That(t, pts[5], test.ShouldResemble, res.Steps[1].SubGoal)
}

func TestGapsCloudSharedBasis(t *testing.T) {
	// A pillar at -80 degrees in front of a wall is the near side of two gaps.
	ranges := make([]float64, 36)
	for i := range ranges {
		ranges[i] = 3
	}
	for i := 15; i < 22; i++ {
		ranges[i] = 10
	}
	ranges[10] = 1.5
	scan := &lidar.Scan{AngleMin: -math.Pi, AngleIncrement: math.Pi / 18, RangeMax: 10, Ranges: ranges}
	obstacles, _ := BuildObstacles(scan, spatialmath.NewZeroPose2D())
	profile := RobotProfile{Radius: 0.3, SafetyMargin: 0.1, MinGapWidth: 0.8, Footprint: SquareFootprint(0.3)}
	gaps := FilterGaps(DetectGaps(obstacles, profile, scan.RangeMax), profile.MinGapWidth)
	test.That(t, len(gaps), test.ShouldEqual, 3)
	test.That(t, gaps[0].Right.Point, test.ShouldResemble, gaps[2].Left.Point)

	pc, err := GapsCloud(gaps)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2*len(gaps))
	test.That(t, cloudValues(pc), test.ShouldResemble, []int{0, 0, 1, 1, 2, 2})
}
