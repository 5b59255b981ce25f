package cli

import (
	"context"

	filter "github.com/leoorshansky/KalmanFilterExample"
	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/leoorshansky/KalmanFilterExample/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Driver feeds measurements to a filter one at a time.
type Driver struct {
	// Filter is the filter being driven
	Filter filter.Filter
	// SkipSingular skips measurements whose innovation covariance can't be
	// inverted instead of aborting the run
	SkipSingular bool
	// Logger logs driver progress
	Logger *zap.SugaredLogger
	// OnStep is called with every step once the filter processed it
	OnStep func(store.Step) error
}

// Run updates the filter with every measurement in zs and returns the steps.
// It stops at the first filter error unless the error is a singular
// innovation and SkipSingular is set, in which case the step keeps the
// previous estimate and is marked skipped.
func (d *Driver) Run(ctx context.Context, zs []mat.Vector) ([]store.Step, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	steps := make([]store.Step, 0, len(zs))
	for i, z := range zs {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		skipped := false
		if _, err := d.Filter.Update(z); err != nil {
			if !d.SkipSingular || !errors.Is(err, kalman.ErrSingularInnovation) {
				return steps, errors.Wrapf(err, "step %d", i)
			}
			logger.Warnw("skipping measurement", "step", i, "measurement", literal.Format(z), "error", err)
			skipped = true
		}

		est, err := d.Filter.Estimate()
		if err != nil {
			return steps, errors.Wrapf(err, "step %d", i)
		}

		s := store.Step{
			Index:       i,
			Measurement: z,
			State:       est.Val(),
			Cov:         est.Cov(),
			Skipped:     skipped,
		}
		logger.Debugw("filter step", "step", i, "state", literal.Format(s.State))

		if d.OnStep != nil {
			if err := d.OnStep(s); err != nil {
				return steps, err
			}
		}
		steps = append(steps, s)
	}

	return steps, nil
}

// Component returns element i of the state of every step.
func Component(steps []store.Step, i int) []float64 {
	out := make([]float64, len(steps))
	for k, s := range steps {
		out[k] = s.State.AtVec(i)
	}

	return out
}
