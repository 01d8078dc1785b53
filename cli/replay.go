package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/gapnav/obstaclemap"
	"go.viam.com/gapnav/ros"
	"go.viam.com/gapnav/services/navigation"
	"go.viam.com/gapnav/spatialmath"
	"go.viam.com/gapnav/utils"
)

// ReplayAction runs every laser scan recorded in a bag through a fresh obstacle map and prints
// a summary of the sub-goals found.
func ReplayAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	topic := c.String(replayFlagTopic)
	if topic == "" {
		topic = cfg.LaserTopicName()
	}
	rb, err := ros.ReadBag(c.Path(replayFlagBag))
	if err != nil {
		return err
	}
	scans, err := ros.LaserScansForTopic(rb, topic)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		return errors.Errorf("no laser scans on topic %q", topic)
	}

	laserPose := spatialmath.Pose2D{
		X:     c.Float64(replayFlagLaserX),
		Y:     c.Float64(replayFlagLaserY),
		Theta: utils.DegToRad(c.Float64(replayFlagLaserYaw)),
	}
	fs, err := newFrameSystem(cfg.BaseFrameName(), scans[0].Frame, laserPose)
	if err != nil {
		return err
	}
	logger := newLogger(c)
	defer goutils.UncheckedErrorFunc(logger.Sync)
	om, err := obstaclemap.NewObstacleMap(cfg.ObstacleMapConfig(), fs, logger)
	if err != nil {
		return err
	}

	var pub *pcdPublisher
	if dir := c.String(flagPCDDir); dir != "" {
		if pub, err = newPCDPublisher(dir); err != nil {
			return err
		}
	}

	report := newCycleReport()
	for i, scan := range scans {
		res, err := subGoalForScan(c.Context, om, scan, cfg.GoalVector(), cfg.Metric())
		if err != nil {
			logger.Warnw("skipping scan", "index", i, "error", err)
			report.addFailure()
			continue
		}
		report.add(res)
		logger.Debugw("scan processed", "index", i, "status", res.Status.String(), "sub_goal", res.SubGoal)
		if pub == nil {
			continue
		}
		pub.prefix = fmt.Sprintf("%05d", i)
		if err := navigation.PublishResult(c.Context, pub, cfg.BaseFrameName(), res); err != nil {
			return err
		}
	}

	printf(c.App.Writer, "%d scans on %s", len(scans), topic)
	printf(c.App.Writer, "%s", report.String())
	return nil
}
