package obstaclemap

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/gapnav/motionplan/tpspace"
	"go.viam.com/gapnav/spatialmath"
)

// Metric chooses how gap boundaries are compared to the target.
type Metric int

const (
	// MetricAngular compares bearings.
	MetricAngular Metric = iota
	// MetricEuclidean compares planar distance to the target point.
	MetricEuclidean
)

func (m Metric) String() string {
	switch m {
	case MetricAngular:
		return "angular"
	case MetricEuclidean:
		return "euclidean"
	default:
		return "unknown"
	}
}

// ParseMetric parses "angular" or "euclidean". The empty string means angular.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "angular":
		return MetricAngular, nil
	case "euclidean", "euclid":
		return MetricEuclidean, nil
	}
	return MetricAngular, errors.Errorf("unknown distance metric %q", s)
}

func (m Metric) distance(target *tpspace.Trajectory, o Obstacle) float64 {
	if m == MetricEuclidean {
		return spatialmath.Distance(target.Goal(), o.Point)
	}
	return math.Abs(spatialmath.NormalizeAngle(target.Direction() - o.Angle))
}

// ClosestGap returns the gap with the boundary nearest to the target, its index, and whether
// any gap was found. The returned gap has CloseRight set; a tie between its sides goes right.
func ClosestGap(target *tpspace.Trajectory, gaps []Gap, metric Metric) (Gap, int, bool) {
	minDist := math.MaxFloat64
	closest := -1
	closeRight := false
	for i, g := range gaps {
		distRight := metric.distance(target, g.Right)
		distLeft := metric.distance(target, g.Left)
		if distRight < minDist || distLeft < minDist {
			closest = i
			if distRight > distLeft {
				minDist = distLeft
				closeRight = false
			} else {
				minDist = distRight
				closeRight = true
			}
		}
	}
	if closest == -1 {
		return Gap{}, -1, false
	}
	g := NewGap(gaps[closest].Right, gaps[closest].Left)
	g.CloseRight = closeRight
	return g, closest, true
}
