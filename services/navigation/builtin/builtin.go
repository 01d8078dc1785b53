// Package builtin contains the default navigation service, which polls a range finder and keeps
// an obstacle map up to date.
package builtin

import (
	"context"
	"sync"
	"sync/atomic"

	clk "github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/logging"
	"go.viam.com/gapnav/obstaclemap"
	"go.viam.com/gapnav/referenceframe"
	"go.viam.com/gapnav/services/navigation"
	"go.viam.com/gapnav/utils"
)

// clock is the package level clock used by the polling loop; tests replace it with a mock.
var clock = clk.New()

type builtIn struct {
	logger    logging.Logger
	cfg       *navigation.Config
	device    lidar.Device
	obstacles *obstaclemap.ObstacleMap
	publisher navigation.Publisher
	workers   *utils.StoppableWorkers

	cycles   atomic.Int64
	failures atomic.Int64
	// stale counts cycles that reused the previous obstacles because the laser could not be placed.
	stale atomic.Int64

	mu     sync.Mutex
	latest *obstaclemap.SubGoalResult
}

// New returns a navigation service polling device at the configured frequency. Every cycle
// updates the obstacle map, computes a sub-goal for the configured goal and hands the
// visualization clouds to publisher, which may be nil.
func New(
	ctx context.Context,
	cfg *navigation.Config,
	device lidar.Device,
	transforms referenceframe.TransformLookup,
	publisher navigation.Publisher,
	logger logging.Logger,
) (navigation.Service, error) {
	if err := cfg.Validate("navigation"); err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errors.New("navigation service needs a scan source")
	}
	om, err := obstaclemap.NewObstacleMap(cfg.ObstacleMapConfig(), transforms, logger.Sublogger("obstaclemap"))
	if err != nil {
		return nil, err
	}

	svc := &builtIn{
		logger:    logger,
		cfg:       cfg,
		device:    device,
		obstacles: om,
		publisher: publisher,
	}
	svc.workers = utils.NewStoppableWorkers(svc.pollScans)
	logger.CInfow(ctx, "navigation service started",
		"base_frame", cfg.BaseFrameName(),
		"polling_interval", cfg.PollingInterval().String(),
		"metric", cfg.Metric().String())
	return svc, nil
}

func (svc *builtIn) pollScans(ctx context.Context) {
	ticker := clock.Ticker(svc.cfg.PollingInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := svc.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			svc.failures.Add(1)
			svc.logger.CDebugw(ctx, "navigation cycle failed", "error", err)
		}
	}
}

func (svc *builtIn) cycle(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "navigation::builtIn::cycle")
	defer span.End()

	scan, err := svc.device.Scan(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get scan")
	}
	if _, err := svc.obstacles.Update(ctx, scan); err != nil {
		if !errors.Is(err, obstaclemap.ErrTransformUnavailable) {
			return err
		}
		// The obstacle map keeps its previous state and warns about it.
		svc.stale.Add(1)
	}
	res, err := svc.obstacles.FindSubGoal(ctx, svc.cfg.GoalVector(), svc.cfg.Metric())
	if err != nil {
		return err
	}
	svc.cycles.Add(1)

	svc.mu.Lock()
	svc.latest = res
	svc.mu.Unlock()

	if svc.publisher == nil {
		return nil
	}
	return navigation.PublishResult(ctx, svc.publisher, svc.cfg.BaseFrameName(), res)
}

func (svc *builtIn) SubGoal(ctx context.Context, target r3.Vector) (*obstaclemap.SubGoalResult, error) {
	return svc.obstacles.FindSubGoal(ctx, target, svc.cfg.Metric())
}

func (svc *builtIn) Latest(ctx context.Context) (*obstaclemap.SubGoalResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.latest, nil
}

// Close stops polling and closes the scan source.
func (svc *builtIn) Close(ctx context.Context) error {
	svc.workers.Stop()
	svc.logger.CInfow(ctx, "navigation service stopped",
		"cycles", svc.cycles.Load(),
		"failed_cycles", svc.failures.Load())
	return multierr.Combine(svc.device.Close(ctx))
}
