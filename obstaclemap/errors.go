package obstaclemap

import (
	"github.com/pkg/errors"

	"go.viam.com/gapnav/referenceframe"
)

var (
	// ErrSubGoalFailed is returned when sub-goal synthesis produces a non-finite point.
	ErrSubGoalFailed = errors.New("sub-goal computation failed")
	// ErrResolverExhausted is returned when virtual gap refinement does not settle within its
	// iteration budget.
	ErrResolverExhausted = errors.New("virtual gap resolver exhausted its iterations")
	// ErrNoScan is returned when a sub-goal is requested before any scan was processed.
	ErrNoScan = errors.New("no scan has been processed")
	// ErrTransformUnavailable aliases the frame system error so callers need only one import.
	ErrTransformUnavailable = referenceframe.ErrTransformUnavailable
)
