package obstaclemap

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/gapnav/utils"
)

// RobotProfile describes the robot's size for gap admissibility.
type RobotProfile struct {
	// Radius of the circle enclosing the robot.
	Radius float64
	// SafetyMargin is added to Radius when keeping clear of gap boundaries.
	SafetyMargin float64
	// MinGapWidth is the narrowest opening worth considering.
	MinGapWidth float64
	// Footprint is the robot outline in its own frame, counter-clockwise, at least three vertices.
	Footprint []r3.Vector
}

// SquareFootprint returns a square outline of the given half-width centered on the origin.
func SquareFootprint(halfWidth float64) []r3.Vector {
	return []r3.Vector{
		{X: halfWidth, Y: -halfWidth},
		{X: halfWidth, Y: halfWidth},
		{X: -halfWidth, Y: halfWidth},
		{X: -halfWidth, Y: -halfWidth},
	}
}

// SafeRadius is Radius plus SafetyMargin.
func (rp RobotProfile) SafeRadius() float64 {
	return rp.Radius + rp.SafetyMargin
}

// Validate reports every problem with the profile.
func (rp RobotProfile) Validate() error {
	var err error
	if !utils.IsFinite(rp.Radius) || rp.Radius <= 0 {
		err = multierr.Append(err, errors.Errorf("robot radius must be positive, got %v", rp.Radius))
	}
	if !utils.IsFinite(rp.SafetyMargin) || rp.SafetyMargin < 0 {
		err = multierr.Append(err, errors.Errorf("safety margin must be non-negative, got %v", rp.SafetyMargin))
	}
	if !utils.IsFinite(rp.MinGapWidth) || rp.MinGapWidth < 0 {
		err = multierr.Append(err, errors.Errorf("min gap width must be non-negative, got %v", rp.MinGapWidth))
	}
	if len(rp.Footprint) < 3 {
		err = multierr.Append(err, errors.Errorf("footprint needs at least 3 vertices, got %d", len(rp.Footprint)))
	}
	for i, v := range rp.Footprint {
		if !utils.IsFinite(v.X) || !utils.IsFinite(v.Y) {
			err = multierr.Append(err, errors.Errorf("footprint vertex %d is not finite", i))
		}
	}
	return err
}
