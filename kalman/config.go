package kalman

import (
	"github.com/leoorshansky/KalmanFilterExample/matrix"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// JacobianFunc returns the measurement matrix linearized around state x.
type JacobianFunc func(x mat.Vector) (mat.Matrix, error)

// MeasurementFunc returns the measurement predicted for state x.
type MeasurementFunc func(x mat.Vector) (mat.Vector, error)

// Config is KF configuration.
type Config struct {
	// Dim is the state vector dimension
	Dim int
	// InitState is the initial state guess; any matrix with Dim elements
	InitState mat.Matrix
	// InitCov is the initial state covariance [Dim x Dim]
	InitCov mat.Matrix
	// Transition is the state transition matrix [Dim x Dim]
	Transition mat.Matrix
	// ProcessNoise is the process noise covariance [Dim x Dim]
	ProcessNoise mat.Matrix
	// MeasurementNoise is the measurement noise covariance [m x m]
	MeasurementNoise mat.Matrix
	// MeasurementMatrix maps state to measurement; any matrix with k*Dim
	// elements is reshaped to [k x Dim]. It may be nil for extended filters.
	MeasurementMatrix mat.Matrix
	// Extended selects the extended update path
	Extended bool
	// Jacobian linearizes the measurement model (extended only)
	Jacobian JacobianFunc
	// Measure is the nonlinear measurement model (extended only)
	Measure MeasurementFunc
	// Joseph selects Joseph form covariance update
	Joseph bool
}

// model holds the validated, explicitly reshaped filter matrices.
type model struct {
	x *mat.VecDense
	p *mat.SymDense
	f *mat.Dense
	q *mat.Dense
	h *mat.Dense
	r *mat.Dense
}

// validate reshapes the configured matrices and checks their dimensions.
// It collects every shape violation it finds; each wraps ErrDimensionMismatch.
func (c *Config) validate() (*model, error) {
	d := c.Dim
	if d < 1 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "invalid state dimension: %d", d)
	}

	var err, e error
	m := &model{}

	m.x, e = column(c.InitState, d)
	err = multierr.Append(err, e)

	var p *mat.Dense
	p, e = square(c.InitCov, d, "initial covariance")
	err = multierr.Append(err, e)
	if p != nil {
		m.p, _ = matrix.Symmetrize(p)
	}

	m.f, e = square(c.Transition, d, "transition matrix")
	err = multierr.Append(err, e)

	m.q, e = square(c.ProcessNoise, d, "process noise covariance")
	err = multierr.Append(err, e)

	m.h, e = measurementMatrix(c.MeasurementMatrix, c.MeasurementNoise, d, c.Extended)
	err = multierr.Append(err, e)

	if m.h != nil {
		rows, _ := m.h.Dims()
		m.r, e = square(c.MeasurementNoise, rows, "measurement noise covariance")
		err = multierr.Append(err, e)
	}

	if err != nil {
		return nil, err
	}

	return m, nil
}

// column reshapes the initial state into a d-length column vector.
func column(x mat.Matrix, d int) (*mat.VecDense, error) {
	if x == nil {
		return nil, errors.Wrap(ErrDimensionMismatch, "missing initial state")
	}

	col, err := matrix.Reshape(x, d, 1)
	if err != nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "initial state: %v", err)
	}

	return mat.VecDenseCopyOf(col.ColView(0)), nil
}

// square copies m making sure it is [n x n].
func square(m mat.Matrix, n int, name string) (*mat.Dense, error) {
	if m == nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "missing %s", name)
	}

	rows, cols := m.Dims()
	if rows != n || cols != n {
		return nil, errors.Wrapf(ErrDimensionMismatch, "invalid %s dimensions: [%d x %d], expected [%d x %d]", name, rows, cols, n, n)
	}

	return mat.DenseCopyOf(m), nil
}

// measurementMatrix reshapes h to [k x d]. Extended filters may omit h, in which
// case a zero matrix sized after the measurement noise stands in until the first
// linearization.
func measurementMatrix(h, r mat.Matrix, d int, extended bool) (*mat.Dense, error) {
	if h == nil {
		if !extended {
			return nil, errors.Wrap(ErrDimensionMismatch, "missing measurement matrix")
		}
		if r == nil {
			return nil, errors.Wrap(ErrDimensionMismatch, "missing measurement noise covariance")
		}
		rows, _ := r.Dims()
		return mat.NewDense(rows, d, nil), nil
	}

	hd, err := matrix.Reshape(h, -1, d)
	if err != nil {
		return nil, errors.Wrapf(ErrDimensionMismatch, "measurement matrix: %v", err)
	}

	return hd, nil
}
