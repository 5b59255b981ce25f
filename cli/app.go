// Package cli implements the kalman command line application.
package cli

import (
	"io"

	"github.com/leoorshansky/KalmanFilterExample/config"
	"github.com/leoorshansky/KalmanFilterExample/sim"
	"github.com/urfave/cli/v2"
)

const (
	// Global flags.
	generalFlagDebug = "debug"

	// Flags of the kalman command.
	kalmanFlagDataFile         = "data-file"
	kalmanFlagDimension        = "dimension"
	kalmanFlagInitialGuess     = "initial-guess"
	kalmanFlagInitialError     = "initial-error"
	kalmanFlagTransition       = "transition-matrix"
	kalmanFlagProcessError     = "process-error-matrix"
	kalmanFlagMeasurementError = "measurement-error-matrix"
	kalmanFlagMeasurement      = "measurement-matrix"
	kalmanFlagExtended         = "extended"
	kalmanFlagConfig           = "config"
	kalmanFlagJoseph           = "joseph"
	kalmanFlagSkipSingular     = "skip-singular"

	// Flags of the example command.
	exampleFlagProcessError = "process-error"
	exampleFlagModel        = "model"
	exampleFlagSeed         = "seed"
	exampleFlagSteps        = "steps"

	// Output flags shared by both commands.
	outputFlagFormat = "format"
	outputFlagPlot   = "plot"
	outputFlagHTML   = "html"
	outputFlagDB     = "db"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  outputFlagFormat,
			Usage: "estimate output format: plain or table",
			Value: formatPlain,
		},
		&cli.StringFlag{
			Name:  outputFlagPlot,
			Usage: "save a plot of measured and estimated values to `FILE` (.png, .svg or .pdf)",
		},
		&cli.StringFlag{
			Name:  outputFlagHTML,
			Usage: "save an interactive chart of measured and estimated values to `FILE`",
		},
		&cli.StringFlag{
			Name:  outputFlagDB,
			Usage: "record the run in the SQLite database `FILE`",
		},
	}
}

// NewApp returns a new app with Writer set to out and ErrWriter set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "kalman",
		Usage:           "estimate system state from noisy measurements with a Kalman filter",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  generalFlagDebug,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "kalman",
				Aliases:   []string{"run"},
				Usage:     "filter measurements read from a data file, one vector per line",
				UsageText: "kalman kalman -df data.txt -d 1 -x0 0 -p0 1000 -f 1 -q 0.0001 -r 0.01",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    kalmanFlagDataFile,
						Aliases: []string{"df"},
						Usage:   "read measurements from `FILE`",
					},
					&cli.IntFlag{
						Name:    kalmanFlagDimension,
						Aliases: []string{"d"},
						Usage:   "state dimension",
					},
					&cli.StringFlag{
						Name:    kalmanFlagInitialGuess,
						Aliases: []string{"x0"},
						Usage:   "initial state guess `LITERAL`",
					},
					&cli.StringFlag{
						Name:    kalmanFlagInitialError,
						Aliases: []string{"p0"},
						Usage:   "initial state covariance `LITERAL`",
					},
					&cli.StringFlag{
						Name:    kalmanFlagTransition,
						Aliases: []string{"f"},
						Usage:   "state transition matrix `LITERAL`",
					},
					&cli.StringFlag{
						Name:    kalmanFlagProcessError,
						Aliases: []string{"q"},
						Usage:   "process noise covariance `LITERAL`",
					},
					&cli.StringFlag{
						Name:    kalmanFlagMeasurementError,
						Aliases: []string{"r"},
						Usage:   "measurement noise covariance `LITERAL`",
					},
					&cli.StringFlag{
						Name:    kalmanFlagMeasurement,
						Aliases: []string{"H"},
						Usage:   "measurement matrix `LITERAL`",
						Value:   config.DefaultMeasurementMatrix,
					},
					&cli.BoolFlag{
						Name:    kalmanFlagExtended,
						Aliases: []string{"e"},
						Usage:   "request the extended filter; data files carry no measurement model, so this runs a linear filter",
					},
					&cli.StringFlag{
						Name:    kalmanFlagConfig,
						Aliases: []string{"c"},
						Usage:   "load filter configuration from YAML `FILE`; flags override its values",
					},
					&cli.BoolFlag{
						Name:  kalmanFlagJoseph,
						Usage: "use the Joseph form covariance update",
					},
					&cli.BoolFlag{
						Name:  kalmanFlagSkipSingular,
						Usage: "skip measurements with a singular innovation covariance instead of failing",
					},
				}, outputFlags()...),
				Action: KalmanAction,
			},
			{
				Name:  "example",
				Usage: "filter a synthetic noisy ramp with one of the example models",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    exampleFlagProcessError,
						Aliases: []string{"q"},
						Usage:   "process error `LITERAL`; try tuning this and see what happens",
						Value:   "0.0001",
					},
					&cli.StringFlag{
						Name:    exampleFlagModel,
						Aliases: []string{"m"},
						Usage:   "example model: constant or increasing",
						Value:   sim.ModelConstant,
					},
					&cli.Uint64Flag{
						Name:  exampleFlagSeed,
						Usage: "measurement noise seed; random if unset",
					},
					&cli.IntFlag{
						Name:  exampleFlagSteps,
						Usage: "number of measurements",
						Value: 30,
					},
					&cli.BoolFlag{
						Name:  kalmanFlagSkipSingular,
						Usage: "skip measurements with a singular innovation covariance instead of failing",
					},
				}, outputFlags()...),
				Action: ExampleAction,
			},
		},
	}
}
