// Package lidar defines planar range scans and the devices that produce them.
package lidar

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/gapnav/utils"
)

// rangeEpsilon is the tolerance used to decide that a reading sits on the range_max sentinel.
const rangeEpsilon = 1e-6

// Scan is one sweep of a planar range finder. Readings are ordered counter-clockwise starting
// at AngleMin.
type Scan struct {
	Frame          string
	Time           time.Time
	AngleMin       float64
	AngleIncrement float64
	RangeMin       float64
	RangeMax       float64
	Ranges         []float64
}

// Len returns the number of readings.
func (s *Scan) Len() int {
	return len(s.Ranges)
}

// Angle returns the bearing of reading i in the sensor frame.
func (s *Scan) Angle(i int) float64 {
	return s.AngleMin + float64(i)*s.AngleIncrement
}

// IsReturn reports whether reading i hit something. Non-finite readings, readings at or beyond
// RangeMax and readings below a positive RangeMin are no-returns.
func (s *Scan) IsReturn(i int) bool {
	r := s.Ranges[i]
	if !utils.IsFinite(r) {
		return false
	}
	if r >= s.RangeMax || utils.Float64AlmostEqual(r, s.RangeMax, rangeEpsilon) {
		return false
	}
	return s.RangeMin <= 0 || r >= s.RangeMin
}

// Validate checks that the scan can be turned into obstacles.
func (s *Scan) Validate() error {
	if s == nil {
		return errors.New("nil scan")
	}
	var err error
	if len(s.Ranges) == 0 {
		err = multierr.Append(err, errors.New("scan has no readings"))
	}
	if !utils.IsFinite(s.RangeMax) || s.RangeMax <= 0 {
		err = multierr.Append(err, errors.Errorf("range_max must be positive and finite, got %v", s.RangeMax))
	}
	if !utils.IsFinite(s.AngleMin) || !utils.IsFinite(s.AngleIncrement) || s.AngleIncrement == 0 {
		err = multierr.Append(err, errors.Errorf("invalid angle parameters min=%v increment=%v", s.AngleMin, s.AngleIncrement))
	}
	return err
}

// MinRange returns the smallest finite reading, or +Inf if there is none.
func (s *Scan) MinRange() float64 {
	minRange := math.Inf(1)
	for _, r := range s.Ranges {
		if utils.IsFinite(r) && r < minRange {
			minRange = r
		}
	}
	return minRange
}
