// Package navigation contains the local navigation service, which turns a stream of planar scans
// into sub-goals the robot can steer towards.
package navigation

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/gapnav/obstaclemap"
	"go.viam.com/gapnav/pointcloud"
)

// The topics visualization clouds are published on.
const (
	TopicGaps        = "gaps"
	TopicClosestGap  = "closest_gap"
	TopicVirtualGaps = "virtual_gaps"
)

// A Service answers sub-goal queries against the most recent scan.
type Service interface {
	// SubGoal computes a sub-goal for target, a point in the base frame.
	SubGoal(ctx context.Context, target r3.Vector) (*obstaclemap.SubGoalResult, error)
	// Latest returns the result of the last polling cycle, or nil if there is none yet.
	Latest(ctx context.Context) (*obstaclemap.SubGoalResult, error)
	Close(ctx context.Context) error
}

// A Publisher receives the visualization clouds of every cycle.
type Publisher interface {
	Publish(ctx context.Context, topic, frame string, cloud pointcloud.PointCloud) error
}

// PublishResult sends every cloud of res to pub, skipping the ones that were not produced.
func PublishResult(ctx context.Context, pub Publisher, frame string, res *obstaclemap.SubGoalResult) error {
	for _, tc := range []struct {
		topic string
		cloud pointcloud.PointCloud
	}{
		{TopicGaps, res.GapsCloud},
		{TopicClosestGap, res.ClosestGapCloud},
		{TopicVirtualGaps, res.VirtualGapsCloud},
	} {
		if tc.cloud == nil {
			continue
		}
		if err := pub.Publish(ctx, tc.topic, frame, tc.cloud); err != nil {
			return err
		}
	}
	return nil
}
