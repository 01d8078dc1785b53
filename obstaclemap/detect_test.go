package obstaclemap

import (
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

const ringRangeMax = 20.

// ringObstacles is a wall at 5m all around the robot with a 60 degree opening straight ahead.
func ringObstacles() []Obstacle {
	scan := lidar.NewRingScan(lidar.RingScanConfig{
		NumPoints:  360,
		Range:      5,
		RangeMax:   ringRangeMax,
		GapCenter:  0,
		GapWidth:   utils.DegToRad(60),
		AngleStart: -math.Pi,
	})
	obstacles, _ := BuildObstacles(scan, spatialmath.NewZeroPose2D())
	return obstacles
}

func ringProfile() RobotProfile {
	return RobotProfile{Radius: 0.5, SafetyMargin: 0.1, MinGapWidth: 1, Footprint: SquareFootprint(0.5)}
}

func TestDetectGapsRing(t *testing.T) {
	obstacles := ringObstacles()
	test.That(t, len(Returns(obstacles, ringRangeMax)), test.ShouldEqual, 299)

	gaps := DetectGaps(obstacles, ringProfile(), ringRangeMax)
	// Both passes find the same opening.
	test.That(t, len(gaps), test.ShouldEqual, 2)
	for _, g := range gaps {
		test.That(t, utils.RadToDeg(g.Right.Angle), test.ShouldAlmostEqual, -31, 1e-6)
		test.That(t, utils.RadToDeg(g.Left.Angle), test.ShouldAlmostEqual, 31, 1e-6)
		test.That(t, g.Width, test.ShouldAlmostEqual, 10*math.Sin(utils.DegToRad(31)), 1e-9)
		test.That(t, g.Mid.X, test.ShouldAlmostEqual, 5*math.Cos(utils.DegToRad(31)), 1e-9)
		test.That(t, g.Mid.Y, test.ShouldAlmostEqual, 0, 1e-9)
		test.That(t, g.Front, test.ShouldBeTrue)
		test.That(t, g.CloseRight, test.ShouldBeFalse)
	}
}

func TestDetectGapsVirtualBoundary(t *testing.T) {
	// A single return straight ahead, nothing else in range.
	scan := &lidar.Scan{
		AngleMin:       -math.Pi,
		AngleIncrement: math.Pi / 4,
		RangeMax:       10,
		Ranges:         []float64{10, 10, 10, 10, 2, 10, 10, 10},
	}
	obstacles, _ := BuildObstacles(scan, spatialmath.NewZeroPose2D())
	profile := RobotProfile{Radius: 0.5, SafetyMargin: 0.1, MinGapWidth: 0.5, Footprint: SquareFootprint(0.5)}

	gaps := DetectGaps(obstacles, profile, scan.RangeMax)
	test.That(t, len(gaps), test.ShouldEqual, 2)

	off := 0.6 * math.Sqrt2 / 2
	left := gaps[0]
	test.That(t, left.Right.Point.X, test.ShouldAlmostEqual, 2.)
	test.That(t, left.Left.Point.X, test.ShouldAlmostEqual, 2+off)
	test.That(t, left.Left.Point.Y, test.ShouldAlmostEqual, off)
	test.That(t, left.Left.Angle, test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, left.Left.Distance, test.ShouldAlmostEqual, left.Left.Point.Norm())
	// Same range as the law of cosines on the basis range, the safe radius and the angle between.
	safe := profile.SafeRadius()
	test.That(t, left.Left.Distance, test.ShouldAlmostEqual,
		math.Sqrt(2*2+safe*safe+2*2*safe*math.Cos(math.Pi/4)), 1e-9)
	test.That(t, left.Width, test.ShouldAlmostEqual, profile.SafeRadius())

	right := gaps[1]
	test.That(t, right.Left.Point.X, test.ShouldAlmostEqual, 2.)
	test.That(t, right.Right.Point.X, test.ShouldAlmostEqual, 2+off)
	test.That(t, right.Right.Point.Y, test.ShouldAlmostEqual, -off)
	test.That(t, right.Right.Angle, test.ShouldAlmostEqual, -math.Pi/4)

	// Virtual gaps are only as wide as the safe radius.
	test.That(t, len(FilterGaps(gaps, 0.5)), test.ShouldEqual, 2)
	test.That(t, FilterGaps(gaps, 1), test.ShouldBeEmpty)
}

func TestDetectGapsWalls(t *testing.T) {
	// A wall at 3m with a no-return opening between 10 and 40 degrees and a pillar at -80.
	ranges := make([]float64, 36)
	for i := range ranges {
		ranges[i] = 3
	}
	for i := 15; i < 22; i++ {
		ranges[i] = 10
	}
	ranges[10] = 1.5
	scan := &lidar.Scan{AngleMin: -math.Pi, AngleIncrement: math.Pi / 18, RangeMax: 10, Ranges: ranges}
	obstacles, minDist := BuildObstacles(scan, spatialmath.NewZeroPose2D())
	test.That(t, minDist, test.ShouldEqual, 1.5)

	profile := RobotProfile{Radius: 0.3, SafetyMargin: 0.1, MinGapWidth: 0.8, Footprint: SquareFootprint(0.3)}
	gaps := FilterGaps(DetectGaps(obstacles, profile, scan.RangeMax), profile.MinGapWidth)
	test.That(t, len(gaps), test.ShouldEqual, 3)

	spans := make([][2]float64, 0, len(gaps))
	for _, g := range gaps {
		spans = append(spans, [2]float64{
			math.Round(utils.RadToDeg(g.Right.Angle)),
			math.Round(utils.RadToDeg(g.Left.Angle)),
		})
	}
	test.That(t, spans, test.ShouldResemble, [][2]float64{{-80, -70}, {-40, 40}, {-90, -80}})
	// The pillar is the nearer side of both of its gaps.
	test.That(t, gaps[0].Right.Distance, test.ShouldEqual, 1.5)
	test.That(t, gaps[2].Left.Distance, test.ShouldEqual, 1.5)
}

func TestDetectGapsDegenerate(t *testing.T) {
	profile := ringProfile()
	test.That(t, DetectGaps(nil, profile, 10), test.ShouldBeEmpty)
	test.That(t, DetectGaps([]Obstacle{obstacleAt(1, 0)}, profile, 10), test.ShouldBeEmpty)

	// Nothing but no-returns has no discontinuity.
	scan := &lidar.Scan{AngleMin: -math.Pi, AngleIncrement: math.Pi / 2, RangeMax: 10, Ranges: []float64{10, 10, 10, 10}}
	obstacles, _ := BuildObstacles(scan, spatialmath.NewZeroPose2D())
	test.That(t, DetectGaps(obstacles, profile, scan.RangeMax), test.ShouldBeEmpty)
}
