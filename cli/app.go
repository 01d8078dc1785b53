// Package cli contains the gapnav command line tool, which runs the obstacle map against
// synthetic or recorded laser scans.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	generalFlagDebug   = "debug"
	generalFlagConfig  = "config"
	generalFlagLogFile = "log-file"

	simulateFlagGapDeg     = "gap-deg"
	simulateFlagGapCenter  = "gap-center-deg"
	simulateFlagRange      = "range"
	simulateFlagRangeMax   = "range-max"
	simulateFlagPoints     = "points"
	simulateFlagHeadingDeg = "heading-deg"

	replayFlagBag      = "bag"
	replayFlagTopic    = "topic"
	replayFlagLaserX   = "laser-x"
	replayFlagLaserY   = "laser-y"
	replayFlagLaserYaw = "laser-yaw-deg"

	flagPCDDir = "pcd-dir"
)

var app = &cli.App{
	Name:            "gapnav",
	Usage:           "compute gap based sub-goals from laser scans",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load navigation configuration from `FILE`",
		},
		&cli.PathFlag{
			Name:  generalFlagLogFile,
			Usage: "also write logs to `FILE`, rotated every 10MB",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "simulate",
			Usage:     "compute a sub-goal for a synthetic ring of obstacles with one opening",
			UsageText: "gapnav [global options] simulate [--gap-deg <deg>] [--range <m>] [--heading-deg <deg>]",
			Flags: []cli.Flag{
				&cli.Float64Flag{
					Name:  simulateFlagGapDeg,
					Usage: "angular width of the opening",
					Value: 60,
				},
				&cli.Float64Flag{
					Name:  simulateFlagGapCenter,
					Usage: "bearing of the opening",
				},
				&cli.Float64Flag{
					Name:  simulateFlagRange,
					Usage: "distance of the ring from the robot",
					Value: 5,
				},
				&cli.Float64Flag{
					Name:  simulateFlagRangeMax,
					Usage: "maximum range reported by the simulated laser",
					Value: 20,
				},
				&cli.IntFlag{
					Name:  simulateFlagPoints,
					Usage: "readings per scan",
					Value: 360,
				},
				&cli.Float64Flag{
					Name:  simulateFlagHeadingDeg,
					Usage: "bearing of the goal; the configured goal is used when unset",
				},
				&cli.StringFlag{
					Name:  flagPCDDir,
					Usage: "write the visualization clouds as pcd files to `DIR`",
				},
			},
			Action: SimulateAction,
		},
		{
			Name:      "replay",
			Usage:     "run every laser scan of a ROS bag through the obstacle map",
			UsageText: "gapnav [global options] replay --bag <file> [--topic <topic>]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     replayFlagBag,
					Usage:    "ROS bag to read",
					Required: true,
				},
				&cli.StringFlag{
					Name:  replayFlagTopic,
					Usage: "laser scan topic; defaults to the configured one",
				},
				&cli.Float64Flag{
					Name:  replayFlagLaserX,
					Usage: "laser x offset in the base frame",
				},
				&cli.Float64Flag{
					Name:  replayFlagLaserY,
					Usage: "laser y offset in the base frame",
				},
				&cli.Float64Flag{
					Name:  replayFlagLaserYaw,
					Usage: "laser yaw in the base frame",
				},
				&cli.StringFlag{
					Name:  flagPCDDir,
					Usage: "write the visualization clouds of every cycle as pcd files to `DIR`",
				},
			},
			Action: ReplayAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
