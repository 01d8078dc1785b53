package referenceframe

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/gapnav/spatialmath"
)

var errNoParent = errors.New("no parent")

// FrameSystem represents a tree of frames rooted at the world frame.
type FrameSystem interface {
	TransformLookup

	Name() string
	World() Frame
	FrameNames() []string
	GetFrame(name string) Frame
	AddFrame(frame, parent Frame) error
	RemoveFrame(frame Frame)
	Parent(frame Frame) (Frame, error)
	// TracebackFrame lists the frames from query up to and including the world frame.
	TracebackFrame(query Frame) ([]Frame, error)
}

// simpleFrameSystem implements FrameSystem. It is a simple tree graph guarded by a mutex so
// frames may be published while lookups are in flight.
type simpleFrameSystem struct {
	mu      sync.RWMutex
	name    string
	world   Frame
	frames  map[string]Frame
	parents map[Frame]Frame
}

// NewEmptyFrameSystem creates a frame system containing only the world frame.
func NewEmptyFrameSystem(name string) FrameSystem {
	return &simpleFrameSystem{
		name:    name,
		world:   NewZeroStaticFrame(World),
		frames:  map[string]Frame{},
		parents: map[Frame]Frame{},
	}
}

func (sfs *simpleFrameSystem) Name() string {
	return sfs.name
}

func (sfs *simpleFrameSystem) World() Frame {
	return sfs.world
}

func (sfs *simpleFrameSystem) frameExists(name string) bool {
	if name == World {
		return true
	}
	_, ok := sfs.frames[name]
	return ok
}

func (sfs *simpleFrameSystem) FrameNames() []string {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	names := make([]string, 0, len(sfs.frames))
	for k := range sfs.frames {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetFrame returns the frame with the given name, or nil if it is not found.
func (sfs *simpleFrameSystem) GetFrame(name string) Frame {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	return sfs.getFrame(name)
}

func (sfs *simpleFrameSystem) getFrame(name string) Frame {
	if name == World {
		return sfs.world
	}
	return sfs.frames[name]
}

func (sfs *simpleFrameSystem) AddFrame(frame, parent Frame) error {
	if parent == nil {
		return NewParentFrameMissingError()
	}
	sfs.mu.Lock()
	defer sfs.mu.Unlock()
	if !sfs.frameExists(parent.Name()) {
		return fmt.Errorf("parent frame with name %q not in frame system", parent.Name())
	}
	if sfs.frameExists(frame.Name()) {
		return fmt.Errorf("frame with name %q already in frame system", frame.Name())
	}
	sfs.frames[frame.Name()] = frame
	sfs.parents[frame] = sfs.getFrame(parent.Name())
	return nil
}

// RemoveFrame deletes the given frame and all its descendents if it exists.
func (sfs *simpleFrameSystem) RemoveFrame(frame Frame) {
	sfs.mu.Lock()
	defer sfs.mu.Unlock()
	sfs.removeFrame(frame)
}

func (sfs *simpleFrameSystem) removeFrame(frame Frame) {
	delete(sfs.frames, frame.Name())
	delete(sfs.parents, frame)
	for f, parent := range sfs.parents {
		if parent == frame {
			sfs.removeFrame(f)
		}
	}
}

func (sfs *simpleFrameSystem) Parent(frame Frame) (Frame, error) {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	if !sfs.frameExists(frame.Name()) {
		return nil, fmt.Errorf("frame with name %q not in frame system", frame.Name())
	}
	if frame.Name() == World {
		return nil, errNoParent
	}
	return sfs.parents[sfs.frames[frame.Name()]], nil
}

func (sfs *simpleFrameSystem) TracebackFrame(query Frame) ([]Frame, error) {
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()
	return sfs.traceback(query.Name())
}

func (sfs *simpleFrameSystem) traceback(name string) ([]Frame, error) {
	if !sfs.frameExists(name) {
		return nil, fmt.Errorf("frame with name %q not in frame system", name)
	}
	if name == World {
		return []Frame{sfs.world}, nil
	}
	frame := sfs.frames[name]
	parents, err := sfs.traceback(sfs.parents[frame].Name())
	if err != nil {
		return nil, err
	}
	return append([]Frame{frame}, parents...), nil
}

// toWorld composes the chain of static transforms from name up to the world frame.
func (sfs *simpleFrameSystem) toWorld(name string) (spatialmath.Pose2D, error) {
	chain, err := sfs.traceback(name)
	if err != nil {
		return spatialmath.Pose2D{}, err
	}
	pose := spatialmath.NewZeroPose2D()
	for i := len(chain) - 1; i >= 0; i-- {
		pose = pose.Compose(chain[i].Transform())
	}
	return pose, nil
}

// LookupTransform returns the pose that maps points expressed in source into target.
func (sfs *simpleFrameSystem) LookupTransform(ctx context.Context, target, source string) (spatialmath.Pose2D, error) {
	if err := ctx.Err(); err != nil {
		return spatialmath.Pose2D{}, err
	}
	if target == source {
		return spatialmath.NewZeroPose2D(), nil
	}
	sfs.mu.RLock()
	defer sfs.mu.RUnlock()

	sourceInWorld, err := sfs.toWorld(source)
	if err != nil {
		return spatialmath.Pose2D{}, errors.Wrapf(ErrTransformUnavailable, "%s -> %s: %v", source, target, err)
	}
	targetInWorld, err := sfs.toWorld(target)
	if err != nil {
		return spatialmath.Pose2D{}, errors.Wrapf(ErrTransformUnavailable, "%s -> %s: %v", source, target, err)
	}
	return targetInWorld.Invert().Compose(sourceInWorld), nil
}
