package obstaclemap

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/logging"
	"go.viam.com/gapnav/pointcloud"
	"go.viam.com/gapnav/referenceframe"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

func newTestFrameSystem(t *testing.T, laserPose spatialmath.Pose2D) referenceframe.FrameSystem {
	t.Helper()
	fs := referenceframe.NewEmptyFrameSystem("test")
	base := referenceframe.NewZeroStaticFrame("base_link")
	test.That(t, fs.AddFrame(base, fs.World()), test.ShouldBeNil)
	test.That(t, fs.AddFrame(referenceframe.NewStaticFrame("laser", laserPose), base), test.ShouldBeNil)
	return fs
}

func newTestObstacleMap(t *testing.T, logger logging.Logger) *ObstacleMap {
	t.Helper()
	om, err := NewObstacleMap(Config{RobotFrame: "base_link", Profile: ringProfile()},
		newTestFrameSystem(t, spatialmath.NewZeroPose2D()), logger)
	test.That(t, err, test.ShouldBeNil)
	return om
}

func ringScan(gapDegrees float64) *lidar.Scan {
	return lidar.NewRingScan(lidar.RingScanConfig{
		Frame:      "laser",
		NumPoints:  360,
		Range:      5,
		RangeMax:   ringRangeMax,
		GapWidth:   utils.DegToRad(gapDegrees),
		AngleStart: -math.Pi,
	})
}

func TestNewObstacleMapValidation(t *testing.T) {
	logger := logging.NewTestLogger(t)
	fs := newTestFrameSystem(t, spatialmath.NewZeroPose2D())

	_, err := NewObstacleMap(Config{Profile: ringProfile()}, fs, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewObstacleMap(Config{RobotFrame: "base_link", Profile: ringProfile()}, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewObstacleMap(Config{RobotFrame: "base_link"}, fs, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid robot profile")

	om, err := NewObstacleMap(Config{RobotFrame: "base_link", Profile: ringProfile()}, fs, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, om.transformTimeout, test.ShouldEqual, DefaultTransformTimeout)
	test.That(t, math.IsInf(om.MinObstacleDistance(), 1), test.ShouldBeTrue)
}

func TestObstacleMapCycle(t *testing.T) {
	ctx := context.Background()
	om := newTestObstacleMap(t, logging.NewTestLogger(t))

	_, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricAngular)
	test.That(t, err, test.ShouldBeError, ErrNoScan)

	gapsCloud, err := om.Update(ctx, ringScan(60))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gapsCloud.Size(), test.ShouldEqual, 2)
	test.That(t, len(om.Obstacles()), test.ShouldEqual, 360)
	test.That(t, len(om.Gaps()), test.ShouldEqual, 1)
	test.That(t, om.MinObstacleDistance(), test.ShouldEqual, 5.)

	res, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricAngular)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Status, test.ShouldEqual, StatusFound)
	test.That(t, res.GapIndex, test.ShouldEqual, 0)
	test.That(t, res.Gap.CloseRight, test.ShouldBeTrue)
	test.That(t, res.SubGoal.X, test.ShouldAlmostEqual, 4.741988987, 1e-6)
	test.That(t, res.SubGoal.Y, test.ShouldAlmostEqual, -2.185414912, 1e-6)
	test.That(t, res.Clearance, test.ShouldAlmostEqual, 0.6, 1e-6)
	test.That(t, res.Resolution.Verdict, test.ShouldEqual, VerdictAdmissible)
	test.That(t, res.GapsCloud.Size(), test.ShouldEqual, 2)
	test.That(t, res.ClosestGapCloud.Size(), test.ShouldEqual, 2)
	test.That(t, res.VirtualGapsCloud.Size(), test.ShouldEqual, 3)
	test.That(t, pointcloud.CloudContains(res.VirtualGapsCloud, res.SubGoal.X, res.SubGoal.Y, 0), test.ShouldBeTrue)

	again, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricAngular)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.CycleID, test.ShouldNotEqual, res.CycleID)
	test.That(t, again.SubGoal, test.ShouldResemble, res.SubGoal)
}

func TestObstacleMapNoGap(t *testing.T) {
	ctx := context.Background()
	om := newTestObstacleMap(t, logging.NewTestLogger(t))

	gapsCloud, err := om.Update(ctx, ringScan(0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gapsCloud.Size(), test.ShouldEqual, 0)

	res, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricEuclidean)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Status, test.ShouldEqual, StatusNoGap)
	test.That(t, res.GapIndex, test.ShouldEqual, -1)
	test.That(t, res.Resolution, test.ShouldBeNil)
}

func TestObstacleMapMountedLaser(t *testing.T) {
	ctx := context.Background()
	// Laser mounted backwards: the opening is behind the robot.
	fs := newTestFrameSystem(t, spatialmath.Pose2D{Theta: math.Pi})
	om, err := NewObstacleMap(Config{RobotFrame: "base_link", Profile: ringProfile()}, fs, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	_, err = om.Update(ctx, ringScan(60))
	test.That(t, err, test.ShouldBeNil)
	gaps := om.Gaps()
	test.That(t, len(gaps), test.ShouldEqual, 1)
	test.That(t, gaps[0].Front, test.ShouldBeFalse)
	test.That(t, gaps[0].Mid.X, test.ShouldAlmostEqual, -5*math.Cos(utils.DegToRad(31)), 1e-9)
}

func TestObstacleMapTransformUnavailable(t *testing.T) {
	ctx := context.Background()
	logger, logs := logging.NewObservedTestLogger(t)
	om := newTestObstacleMap(t, logger)

	_, err := om.Update(ctx, ringScan(60))
	test.That(t, err, test.ShouldBeNil)
	before := om.Obstacles()

	lost := ringScan(0)
	lost.Frame = "rear_laser"
	_, err = om.Update(ctx, lost)
	test.That(t, errors.Is(err, ErrTransformUnavailable), test.ShouldBeTrue)
	_, err = om.Update(ctx, lost)
	test.That(t, errors.Is(err, ErrTransformUnavailable), test.ShouldBeTrue)

	// The warning is rate limited and the previous scan is still in use.
	test.That(t, logs.FilterMessage("keeping previous obstacles, sensor transform unavailable").Len(), test.ShouldEqual, 1)
	test.That(t, om.Obstacles(), test.ShouldResemble, before)
	res, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricAngular)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Status, test.ShouldEqual, StatusFound)

	_, err = om.Update(ctx, &lidar.Scan{Frame: "laser", RangeMax: 10})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestObstacleMapConcurrent(t *testing.T) {
	ctx := context.Background()
	om := newTestObstacleMap(t, logging.NewTestLogger(t))
	_, err := om.Update(ctx, ringScan(60))
	test.That(t, err, test.ShouldBeNil)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			_, err := om.Update(ctx, ringScan(60))
			return err
		})
		g.Go(func() error {
			res, err := om.FindSubGoal(ctx, r3.Vector{X: 10}, MetricAngular)
			if err != nil {
				return err
			}
			if res.Status != StatusFound {
				return errors.Errorf("unexpected status %v", res.Status)
			}
			return nil
		})
	}
	test.That(t, g.Wait(), test.ShouldBeNil)
}

func TestStatusString(t *testing.T) {
	test.That(t, StatusFound.String(), test.ShouldEqual, "found")
	test.That(t, StatusNoGap.String(), test.ShouldEqual, "no_gap")
	test.That(t, StatusBlocked.String(), test.ShouldEqual, "blocked")
}
