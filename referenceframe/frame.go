// Package referenceframe tracks named planar frames and the static transforms between them.
package referenceframe

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/gapnav/spatialmath"
)

// World is the string "world", but made into an exported constant.
const World = "world"

// ErrTransformUnavailable is returned when no transform between two frames is known.
var ErrTransformUnavailable = errors.New("transform unavailable")

// NewParentFrameMissingError returns an error indicating that a frame is missing a parent.
func NewParentFrameMissingError() error {
	return errors.New("parent frame is nil")
}

// Frame is a named frame with a fixed pose relative to its parent.
type Frame interface {
	Name() string
	// Transform returns the pose of this frame expressed in its parent.
	Transform() spatialmath.Pose2D
}

type staticFrame struct {
	name string
	pose spatialmath.Pose2D
}

// NewStaticFrame creates a frame given a name and its pose in the parent frame.
func NewStaticFrame(name string, pose spatialmath.Pose2D) Frame {
	return &staticFrame{name: name, pose: pose}
}

// NewZeroStaticFrame creates a frame with the identity transform.
func NewZeroStaticFrame(name string) Frame {
	return &staticFrame{name: name}
}

func (sf *staticFrame) Name() string {
	return sf.name
}

func (sf *staticFrame) Transform() spatialmath.Pose2D {
	return sf.pose
}

// TransformLookup resolves the transform that maps points expressed in source into target.
type TransformLookup interface {
	LookupTransform(ctx context.Context, target, source string) (spatialmath.Pose2D, error)
}
