// Package cli contains the pinio command line tool: it brings a board up from a config file and
// runs one operation against it.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig   = "config"
	generalFlagDebug    = "debug"
	generalFlagLogLevel = "log-level"
	generalFlagTimeout  = "timeout"
	readFlagAnalog      = "analog"
	watchFlagDuration   = "duration"
)

var app = &cli.App{
	Name:            "pinio",
	Usage:           "drive the pins of a single-board computer",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load board configuration from `FILE`; a fake board is used if unset",
		},
		&cli.BoolFlag{
			Name:    generalFlagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging, same as --log-level debug",
		},
		&cli.StringFlag{
			Name:  generalFlagLogLevel,
			Usage: "log to stderr at `LEVEL` (debug, info, warn or error); nothing is logged if unset",
		},
		&cli.DurationFlag{
			Name:  generalFlagTimeout,
			Value: 10 * time.Second,
			Usage: "how long to wait for the board to become ready",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "models",
			Usage:  "list the board models this program can drive",
			Action: ListModelsAction,
		},
		{
			Name:   "pins",
			Usage:  "print the pin table of the board and the state of every capable pin",
			Action: ListPinsAction,
		},
		{
			Name:      "mode",
			Usage:     "put a pin into a mode",
			ArgsUsage: "<pin> <mode>",
			Action:    PinModeAction,
		},
		{
			Name:      "read",
			Usage:     "read a pin once",
			ArgsUsage: "<pin>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  readFlagAnalog,
					Usage: "read an analog sample instead of a digital value",
				},
			},
			Action: ReadAction,
		},
		{
			Name:      "write",
			Usage:     "drive a pin",
			ArgsUsage: "<pin> <value>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  readFlagAnalog,
					Usage: "write a PWM value instead of a digital value",
				},
			},
			Action: WriteAction,
		},
		{
			Name:      "watch",
			Usage:     "print a pin's value every time it changes",
			ArgsUsage: "<pin>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  readFlagAnalog,
					Usage: "watch analog samples instead of digital values",
				},
				&cli.DurationFlag{
					Name:  watchFlagDuration,
					Usage: "stop watching after this long; watch until interrupted if unset",
				},
			},
			Action: WatchAction,
		},
		{
			Name:   "reset",
			Usage:  "reset the board",
			Action: ResetAction,
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
