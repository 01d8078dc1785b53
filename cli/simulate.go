package cli

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/obstaclemap"
	"go.viam.com/gapnav/services/navigation"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

const simulatedLaserFrame = "laser"

// SimulateAction computes a sub-goal for a ring of obstacles around the robot with a single
// opening and prints it.
func SimulateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	points := c.Int(simulateFlagPoints)
	if points < 3 {
		return errors.Errorf("--%s must be at least 3, got %d", simulateFlagPoints, points)
	}
	if c.Float64(simulateFlagRange) >= c.Float64(simulateFlagRangeMax) {
		return errors.Errorf("--%s must be below --%s", simulateFlagRange, simulateFlagRangeMax)
	}
	scan := lidar.NewRingScan(lidar.RingScanConfig{
		Frame:      simulatedLaserFrame,
		NumPoints:  points,
		Range:      c.Float64(simulateFlagRange),
		RangeMax:   c.Float64(simulateFlagRangeMax),
		GapCenter:  utils.DegToRad(c.Float64(simulateFlagGapCenter)),
		GapWidth:   utils.DegToRad(c.Float64(simulateFlagGapDeg)),
		AngleStart: -math.Pi,
	})

	target := cfg.GoalVector()
	if c.IsSet(simulateFlagHeadingDeg) {
		heading := utils.DegToRad(c.Float64(simulateFlagHeadingDeg))
		target = r3.Vector{X: scan.RangeMax * math.Cos(heading), Y: scan.RangeMax * math.Sin(heading)}
	}

	fs, err := newFrameSystem(cfg.BaseFrameName(), simulatedLaserFrame, spatialmath.NewZeroPose2D())
	if err != nil {
		return err
	}
	logger := newLogger(c)
	defer goutils.UncheckedErrorFunc(logger.Sync)
	om, err := obstaclemap.NewObstacleMap(cfg.ObstacleMapConfig(), fs, logger)
	if err != nil {
		return err
	}
	res, err := subGoalForScan(c.Context, om, scan, target, cfg.Metric())
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", resultTable(res))

	if dir := c.String(flagPCDDir); dir != "" {
		pub, err := newPCDPublisher(dir)
		if err != nil {
			return err
		}
		if err := navigation.PublishResult(c.Context, pub, cfg.BaseFrameName(), res); err != nil {
			return err
		}
	}
	return nil
}
