package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/leoorshansky/KalmanFilterExample/config"
	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/leoorshansky/KalmanFilterExample/noise"
	"github.com/leoorshansky/KalmanFilterExample/sim"
	"github.com/leoorshansky/KalmanFilterExample/store"
	"github.com/leoorshansky/KalmanFilterExample/stream"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// KalmanAction is the corresponding Action for 'kalman'.
func KalmanAction(c *cli.Context) error {
	logger := NewLogger("kalman", c.App.ErrWriter, c.Bool(generalFlagDebug))
	defer logger.Sync() //nolint:errcheck

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if cfg.DataFile == "" {
		return errors.Errorf("missing --%s", kalmanFlagDataFile)
	}

	kc, err := cfg.KalmanConfig()
	if err != nil {
		return err
	}
	if cfg.Extended {
		logger.Warn("data files carry no measurement model; running a linear filter")
	}

	f, err := kalman.New(kc)
	if err != nil {
		return err
	}

	zs, err := stream.ReadFile(cfg.DataFile)
	if err != nil {
		return err
	}
	logger.Infow("read measurements", "file", cfg.DataFile, "count", len(zs))

	yml, err := cfg.Marshal()
	if err != nil {
		return err
	}

	info := store.RunInfo{Source: cfg.DataFile, Dim: cfg.Dimension, Extended: cfg.Extended, Config: string(yml)}

	return report(c, logger, &Driver{Filter: f, SkipSingular: cfg.SkipSingular, Logger: logger}, zs, info)
}

// loadConfig reads the configuration file, if any, and overrides its values
// with the flags set on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(kalmanFlagConfig); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet(kalmanFlagDataFile) {
		cfg.DataFile = c.String(kalmanFlagDataFile)
	}
	if c.IsSet(kalmanFlagDimension) {
		cfg.Dimension = c.Int(kalmanFlagDimension)
	}
	if c.IsSet(kalmanFlagExtended) {
		cfg.Extended = c.Bool(kalmanFlagExtended)
	}
	if c.IsSet(kalmanFlagJoseph) {
		cfg.Joseph = c.Bool(kalmanFlagJoseph)
	}
	if c.IsSet(kalmanFlagSkipSingular) {
		cfg.SkipSingular = c.Bool(kalmanFlagSkipSingular)
	}

	var err error
	for _, lit := range []struct {
		flag string
		dst  **config.Literal
	}{
		{kalmanFlagInitialGuess, &cfg.InitialGuess},
		{kalmanFlagInitialError, &cfg.InitialError},
		{kalmanFlagTransition, &cfg.TransitionMatrix},
		{kalmanFlagProcessError, &cfg.ProcessErrorMatrix},
		{kalmanFlagMeasurementError, &cfg.MeasurementErrorMatrix},
		{kalmanFlagMeasurement, &cfg.MeasurementMatrix},
	} {
		if !c.IsSet(lit.flag) {
			continue
		}
		l, e := config.NewLiteral(c.String(lit.flag))
		if e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "--%s", lit.flag))
			continue
		}
		*lit.dst = l
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ExampleAction is the corresponding Action for 'example'.
func ExampleAction(c *cli.Context) error {
	logger := NewLogger("example", c.App.ErrWriter, c.Bool(generalFlagDebug))
	defer logger.Sync() //nolint:errcheck

	q, err := literal.Parse(c.String(exampleFlagProcessError))
	if err != nil {
		return errors.Wrapf(err, "--%s", exampleFlagProcessError)
	}

	model := c.String(exampleFlagModel)
	kc, err := sim.ExampleModel(model, q)
	if err != nil {
		return err
	}

	f, err := kalman.New(kc)
	if err != nil {
		return err
	}

	seed := c.Uint64(exampleFlagSeed)
	if !c.IsSet(exampleFlagSeed) {
		seed = uint64(time.Now().UnixNano())
	}

	u, err := noise.NewUniform(-0.2, 0.2, 1, seed)
	if err != nil {
		return err
	}

	var zs []mat.Vector
	switch model {
	case sim.ModelConstant:
		zs, err = sim.Constant(c.Int(exampleFlagSteps), u)
	case sim.ModelIncreasing:
		zs, err = sim.Increasing(c.Int(exampleFlagSteps), u)
	}
	if err != nil {
		return err
	}
	logger.Infow("generated measurements", "model", model, "seed", seed, "count", len(zs))

	info := store.RunInfo{
		Source: "example:" + model,
		Dim:    kc.Dim,
		Config: fmt.Sprintf("model: %s\nprocess_error: %q\nseed: %d\n", model, q.String(), seed),
	}

	return report(c, logger, &Driver{Filter: f, SkipSingular: c.Bool(kalmanFlagSkipSingular), Logger: logger}, zs, info)
}

// report runs the driver over zs and writes the estimates to every output
// requested on the command line.
func report(c *cli.Context, logger *zap.SugaredLogger, d *Driver, zs []mat.Vector, info store.RunInfo) (err error) {
	printer, err := NewPrinter(c.String(outputFlagFormat), c.App.Writer)
	if err != nil {
		return err
	}

	var db *store.DB
	var runID string
	if path := c.String(outputFlagDB); path != "" {
		if db, err = store.Open(path); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, db.Close())
		}()

		if runID, err = db.BeginRun(c.Context, info); err != nil {
			return err
		}
		logger.Infow("recording run", "db", path, "run", runID)
	}

	d.OnStep = func(s store.Step) error {
		if db != nil {
			if err := db.RecordStep(c.Context, runID, s); err != nil {
				return err
			}
		}
		return printer.Print(s)
	}

	steps, runErr := d.Run(c.Context, zs)
	if err := printer.Flush(); err != nil {
		return multierr.Append(runErr, err)
	}
	if runErr != nil {
		return runErr
	}

	skipped := 0
	for _, s := range steps {
		if s.Skipped {
			skipped++
		}
	}
	logger.Infow("filter run complete", "steps", len(steps), "skipped", skipped)

	if len(steps) == 0 {
		return nil
	}

	measured := make([]float64, len(steps))
	for i, s := range steps {
		measured[i] = s.Measurement.AtVec(0)
	}
	estimated := Component(steps, 0)

	if path := c.String(outputFlagPlot); path != "" {
		if err := sim.SavePlot(path, measured, estimated); err != nil {
			return errors.Wrap(err, "failed to save plot")
		}
		logger.Infow("saved plot", "file", path)
	}

	if path := c.String(outputFlagHTML); path != "" {
		if err := writeChart(path, measured, estimated); err != nil {
			return errors.Wrap(err, "failed to save chart")
		}
		logger.Infow("saved chart", "file", path)
	}

	return nil
}

func writeChart(path string, measured, estimated []float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return sim.WriteChart(f, measured, estimated)
}
