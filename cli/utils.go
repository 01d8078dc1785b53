package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/logging"
	"go.viam.com/gapnav/obstaclemap"
	"go.viam.com/gapnav/pointcloud"
	"go.viam.com/gapnav/referenceframe"
	"go.viam.com/gapnav/services/navigation"
	"go.viam.com/gapnav/spatialmath"
)

// printf prints a message with a newline.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

const logFileMaxSizeMB = 10

// newLogger logs to the app's error writer, at debug level when asked to.
func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("gapnav")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if path := c.Path(generalFlagLogFile); path != "" {
		logger.AddAppender(logging.NewFileAppender(path, logFileMaxSizeMB))
	}
	if !c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.INFO)
	}
	return logger
}

// defaultConfig is used when no configuration file is given.
func defaultConfig() *navigation.Config {
	return &navigation.Config{
		RobotRadiusM:  0.5,
		SafetyMarginM: 0.1,
		MinGapWidthM:  1,
	}
}

func loadConfig(c *cli.Context) (*navigation.Config, error) {
	path := c.String(generalFlagConfig)
	if path == "" {
		cfg := defaultConfig()
		return cfg, cfg.Validate("default")
	}
	return navigation.ReadConfig(path)
}

// newFrameSystem puts baseFrame under the world and, when it differs from the base, laserFrame
// under baseFrame at laserPose.
func newFrameSystem(baseFrame, laserFrame string, laserPose spatialmath.Pose2D) (referenceframe.FrameSystem, error) {
	fs := referenceframe.NewEmptyFrameSystem("gapnav")
	base := referenceframe.NewZeroStaticFrame(baseFrame)
	if err := fs.AddFrame(base, fs.World()); err != nil {
		return nil, err
	}
	if laserFrame == "" || laserFrame == baseFrame {
		return fs, nil
	}
	if err := fs.AddFrame(referenceframe.NewStaticFrame(laserFrame, laserPose), base); err != nil {
		return nil, err
	}
	return fs, nil
}

// pcdPublisher writes every published cloud to <dir>/<prefix>_<topic>.pcd.
type pcdPublisher struct {
	dir    string
	prefix string
}

func newPCDPublisher(dir string) (*pcdPublisher, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrapf(err, "could not create directory: %s", dir)
	}
	return &pcdPublisher{dir: dir}, nil
}

func (p *pcdPublisher) Publish(ctx context.Context, topic, frame string, cloud pointcloud.PointCloud) error {
	name := topic + ".pcd"
	if p.prefix != "" {
		name = p.prefix + "_" + name
	}
	//nolint:gosec
	f, err := os.Create(filepath.Join(p.dir, name))
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	return pointcloud.ToPCD(cloud, f, pointcloud.PCDAscii)
}

// subGoalForScan updates om with scan and computes the sub-goal for target.
func subGoalForScan(
	ctx context.Context,
	om *obstaclemap.ObstacleMap,
	scan *lidar.Scan,
	target r3.Vector,
	metric obstaclemap.Metric,
) (*obstaclemap.SubGoalResult, error) {
	if _, err := om.Update(ctx, scan); err != nil {
		return nil, err
	}
	return om.FindSubGoal(ctx, target, metric)
}
