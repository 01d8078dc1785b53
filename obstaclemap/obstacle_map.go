// Package obstaclemap turns planar range scans into a local sub-goal with the gap-based
// reactive method. Free space between obstacle clusters forms gaps. The gap nearest the target
// is narrowed until the robot footprint can follow an arc to its sub-goal without touching an
// obstacle flanking it.
package obstaclemap

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"golang.org/x/time/rate"

	"go.viam.com/gapnav/lidar"
	"go.viam.com/gapnav/logging"
	"go.viam.com/gapnav/motionplan/tpspace"
	"go.viam.com/gapnav/pointcloud"
	"go.viam.com/gapnav/referenceframe"
)

// DefaultTransformTimeout bounds a sensor to robot transform lookup.
const DefaultTransformTimeout = 3 * time.Second

// Status tells whether FindSubGoal produced a usable sub-goal.
type Status int

const (
	// StatusFound means an admissible gap and its sub-goal were found.
	StatusFound Status = iota
	// StatusNoGap means the last scan had no gap wide enough for the robot.
	StatusNoGap
	// StatusBlocked means the selected gap could not be refined into an admissible one.
	StatusBlocked
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNoGap:
		return "no_gap"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// SubGoalResult is the outcome of one FindSubGoal call.
type SubGoalResult struct {
	CycleID   uuid.UUID
	Status    Status
	SubGoal   r3.Vector
	Clearance float64
	// Gap is the gap chosen by the selector and GapIndex its index in the filtered gaps.
	Gap        Gap
	GapIndex   int
	Resolution *Resolution

	GapsCloud        pointcloud.PointCloud
	ClosestGapCloud  pointcloud.PointCloud
	VirtualGapsCloud pointcloud.PointCloud
}

// Config configures an ObstacleMap.
type Config struct {
	// RobotFrame is the frame obstacles, gaps and sub-goals are expressed in.
	RobotFrame       string
	Profile          RobotProfile
	TransformTimeout time.Duration
}

// ObstacleMap owns the obstacles and gaps of the latest scan. Update and FindSubGoal are safe
// to call concurrently; each holds the map for its whole cycle.
type ObstacleMap struct {
	mu               sync.Mutex
	logger           logging.Logger
	profile          RobotProfile
	robotFrame       string
	transforms       referenceframe.TransformLookup
	transformTimeout time.Duration
	transformWarn    rate.Sometimes

	hasScan     bool
	obstacles   []Obstacle
	gaps        []Gap
	minDistance float64
	rangeMax    float64
}

// NewObstacleMap returns an empty map. transforms resolves the scan frame into cfg.RobotFrame.
func NewObstacleMap(cfg Config, transforms referenceframe.TransformLookup, logger logging.Logger) (*ObstacleMap, error) {
	if cfg.RobotFrame == "" {
		return nil, errors.New("robot frame must be set")
	}
	if transforms == nil {
		return nil, errors.New("transform lookup must be set")
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid robot profile")
	}
	timeout := cfg.TransformTimeout
	if timeout <= 0 {
		timeout = DefaultTransformTimeout
	}
	return &ObstacleMap{
		logger:           logger,
		profile:          cfg.Profile,
		robotFrame:       cfg.RobotFrame,
		transforms:       transforms,
		transformTimeout: timeout,
		transformWarn:    rate.Sometimes{First: 1, Interval: 5 * time.Second},
		minDistance:      math.Inf(1),
	}, nil
}

// Update rebuilds the obstacles and gaps from scan and returns the filtered gaps as a cloud.
// If the scan frame cannot be resolved the previous state is kept and an error wrapping
// ErrTransformUnavailable is returned.
func (om *ObstacleMap) Update(ctx context.Context, scan *lidar.Scan) (pointcloud.PointCloud, error) {
	ctx, span := trace.StartSpan(ctx, "obstaclemap::ObstacleMap::Update")
	defer span.End()

	if err := scan.Validate(); err != nil {
		return nil, err
	}

	om.mu.Lock()
	defer om.mu.Unlock()

	source := scan.Frame
	if source == "" {
		source = om.robotFrame
	}
	lookupCtx, cancel := context.WithTimeout(ctx, om.transformTimeout)
	defer cancel()
	tf, err := om.transforms.LookupTransform(lookupCtx, om.robotFrame, source)
	if err != nil {
		om.transformWarn.Do(func() {
			om.logger.CWarnw(ctx, "keeping previous obstacles, sensor transform unavailable",
				"target", om.robotFrame, "source", source, "error", err)
		})
		if !errors.Is(err, ErrTransformUnavailable) {
			err = errors.Wrap(ErrTransformUnavailable, err.Error())
		}
		return nil, err
	}

	obstacles, minDist := BuildObstacles(scan, tf)
	gaps := FilterGaps(DetectGaps(obstacles, om.profile, scan.RangeMax), om.profile.MinGapWidth)

	om.obstacles = obstacles
	om.gaps = gaps
	om.minDistance = minDist
	om.rangeMax = scan.RangeMax
	om.hasScan = true
	om.logger.CDebugw(ctx, "obstacle map updated", "obstacles", len(obstacles), "gaps", len(gaps), "min_distance", minDist)

	return GapsCloud(gaps)
}

// FindSubGoal selects the gap nearest target, refines it and derives the sub-goal. A result
// with StatusNoGap or StatusBlocked is not an error. ErrNoScan is returned before the first
// successful Update.
func (om *ObstacleMap) FindSubGoal(ctx context.Context, target r3.Vector, metric Metric) (*SubGoalResult, error) {
	ctx, span := trace.StartSpan(ctx, "obstaclemap::ObstacleMap::FindSubGoal")
	defer span.End()

	om.mu.Lock()
	defer om.mu.Unlock()

	if !om.hasScan {
		return nil, ErrNoScan
	}

	result := &SubGoalResult{CycleID: uuid.New(), Status: StatusNoGap, GapIndex: -1}
	gapsCloud, err := GapsCloud(om.gaps)
	if err != nil {
		return nil, err
	}
	result.GapsCloud = gapsCloud

	gap, index, ok := ClosestGap(tpspace.NewTrajectory(target), om.gaps, metric)
	if !ok {
		om.logger.CDebugw(ctx, "no gap to steer through", "cycle", result.CycleID)
		return result, nil
	}
	result.Gap, result.GapIndex = gap, index
	if result.ClosestGapCloud, err = ClosestGapCloud(gap, index); err != nil {
		return nil, err
	}

	res, err := ResolveVirtualGaps(gap, om.obstacles, om.profile, om.rangeMax)
	if err != nil {
		if !errors.Is(err, ErrResolverExhausted) {
			return nil, errors.Wrapf(err, "cycle %s", result.CycleID)
		}
		om.logger.CWarnw(ctx, "gap refinement did not settle", "cycle", result.CycleID, "gap", gap.String(), "error", err)
	}
	result.Resolution = res
	result.SubGoal = res.SubGoal
	result.Clearance = res.Clearance
	if result.VirtualGapsCloud, err = VirtualGapsCloud(res); err != nil {
		return nil, err
	}

	result.Status = StatusFound
	if res.Verdict == VerdictBlocked {
		result.Status = StatusBlocked
	}
	om.logger.CDebugw(ctx, "sub-goal computed",
		"cycle", result.CycleID,
		"status", result.Status.String(),
		"sub_goal", res.SubGoal,
		"clearance", res.Clearance,
		"steps", len(res.Steps))
	return result, nil
}

// Obstacles returns a copy of the obstacles of the last scan.
func (om *ObstacleMap) Obstacles() []Obstacle {
	om.mu.Lock()
	defer om.mu.Unlock()
	return append([]Obstacle(nil), om.obstacles...)
}

// Gaps returns a copy of the filtered gaps of the last scan.
func (om *ObstacleMap) Gaps() []Gap {
	om.mu.Lock()
	defer om.mu.Unlock()
	return append([]Gap(nil), om.gaps...)
}

// MinObstacleDistance is the smallest finite range of the last scan, +Inf before any scan.
func (om *ObstacleMap) MinObstacleDistance() float64 {
	om.mu.Lock()
	defer om.mu.Unlock()
	return om.minDistance
}
