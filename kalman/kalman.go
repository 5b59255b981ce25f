// Package kalman implements a recursive linear and extended Kalman filter.
//
// Every update runs the full predict-update recursion on the filter's own
// state and covariance, so a KF only ever needs the latest measurement.
// Scalar filters are handled as 1 x 1 matrices by the same code path.
package kalman

import (
	filter "github.com/leoorshansky/KalmanFilterExample"
	"github.com/leoorshansky/KalmanFilterExample/estimate"
	"github.com/leoorshansky/KalmanFilterExample/matrix"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// KF is Kalman Filter.
// KF is not safe for concurrent use.
type KF struct {
	// dim is state dimension
	dim int
	// x is the current state estimate
	x *mat.VecDense
	// p is the current state covariance
	p *mat.SymDense
	// f is state transition matrix
	f *mat.Dense
	// q is process noise covariance
	q *mat.Dense
	// h is measurement matrix; recomputed each step for extended filters
	h *mat.Dense
	// r is measurement noise covariance
	r *mat.Dense
	// extended selects extended update
	extended bool
	// joseph selects Joseph form covariance update
	joseph bool
	// jac and meas are default linearization functions
	jac  JacobianFunc
	meas MeasurementFunc
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
	// steps counts successful updates
	steps int
}

// New creates new KF from configuration c and returns it.
// The initial state is reshaped into a column vector and the measurement
// matrix into [m x Dim]; the remaining matrices must already have the expected shape.
// It returns error wrapping ErrDimensionMismatch for every inconsistent shape.
func New(c *Config) (*KF, error) {
	if c == nil {
		return nil, errors.New("invalid filter config: nil")
	}

	m, err := c.validate()
	if err != nil {
		return nil, err
	}

	ny, _ := m.h.Dims()

	return &KF{
		dim:      c.Dim,
		x:        m.x,
		p:        m.p,
		f:        m.f,
		q:        m.q,
		h:        m.h,
		r:        m.r,
		extended: c.Extended,
		joseph:   c.Joseph,
		jac:      c.Jacobian,
		meas:     c.Measure,
		inn:      mat.NewVecDense(ny, nil),
		k:        mat.NewDense(c.Dim, ny, nil),
	}, nil
}

// Update runs one predict-update step for measurement z and returns the new state estimate.
// Extended filters use the linearization functions supplied in Config.
func (k *KF) Update(z mat.Vector) (mat.Vector, error) {
	return k.UpdateWith(z, k.jac, k.meas)
}

// UpdateWith runs one predict-update step for measurement z using the given
// linearization functions and returns the new state estimate.
// jac and meas are ignored by linear filters; extended filters require both.
// The Jacobian is evaluated at the state before prediction, meas at the predicted state.
//
// It returns error if either of the following conditions is met:
//   - extended filter without jac or meas: ErrMissingLinearization
//   - z or the linearization results have the wrong size: ErrDimensionMismatch
//   - the innovation covariance is not invertible: ErrSingularInnovation
//
// The filter state is left untouched when an error is returned.
func (k *KF) UpdateWith(z mat.Vector, jac JacobianFunc, meas MeasurementFunc) (mat.Vector, error) {
	if k.extended && (jac == nil || meas == nil) {
		return nil, ErrMissingLinearization
	}

	d := k.dim
	ny, _ := k.h.Dims()

	if z == nil || z.Len() != ny {
		return nil, errors.Wrapf(ErrDimensionMismatch, "invalid measurement length: %d, expected %d", lenOf(z), ny)
	}

	h := k.h
	if k.extended {
		hj, err := jac(k.x)
		if err != nil {
			return nil, errors.Wrap(err, "failed to linearize measurement model")
		}
		rows, cols := hj.Dims()
		if rows != ny || cols != d {
			return nil, errors.Wrapf(ErrDimensionMismatch, "invalid jacobian dimensions: [%d x %d], expected [%d x %d]", rows, cols, ny, d)
		}
		h = mat.DenseCopyOf(hj)
	}

	// predict
	xPrior := mat.NewVecDense(d, nil)
	xPrior.MulVec(k.f, k.x)

	pPrior := mat.NewDense(d, d, nil)
	pPrior.Product(k.f, k.p, k.f.T())
	pPrior.Add(pPrior, k.q)

	// P*H'
	pht := mat.NewDense(d, ny, nil)
	pht.Mul(pPrior, h.T())

	// S = H*P*H' + R
	s := mat.NewDense(ny, ny, nil)
	s.Mul(h, pht)
	s.Add(s, k.r)

	sInv := mat.NewDense(ny, ny, nil)
	if err := sInv.Inverse(s); err != nil {
		return nil, errors.Wrapf(ErrSingularInnovation, "%v", err)
	}

	gain := mat.NewDense(d, ny, nil)
	gain.Mul(pht, sInv)

	// predicted measurement
	var y mat.Vector
	if k.extended {
		yNext, err := meas(xPrior)
		if err != nil {
			return nil, errors.Wrap(err, "failed to evaluate measurement model")
		}
		if yNext.Len() != ny {
			return nil, errors.Wrapf(ErrDimensionMismatch, "invalid predicted measurement length: %d, expected %d", yNext.Len(), ny)
		}
		y = yNext
	} else {
		yNext := mat.NewVecDense(ny, nil)
		yNext.MulVec(h, xPrior)
		y = yNext
	}

	inn := mat.NewVecDense(ny, nil)
	inn.SubVec(z, y)

	x := mat.NewVecDense(d, nil)
	x.MulVec(gain, inn)
	x.AddVec(xPrior, x)

	// I - K*H
	a := mat.NewDense(d, d, nil)
	a.Mul(gain, h)
	a.Sub(matrix.Identity(d), a)

	cov := mat.NewDense(d, d, nil)
	if k.joseph {
		cov.Product(a, pPrior, a.T())
		krk := mat.NewDense(d, d, nil)
		krk.Product(gain, k.r, gain.T())
		cov.Add(cov, krk)
	} else {
		cov.Mul(a, pPrior)
	}

	p, err := matrix.Symmetrize(cov)
	if err != nil {
		return nil, err
	}

	k.x = x
	k.p = p
	k.h = h
	k.inn = inn
	k.k = gain
	k.steps++

	return k.State(), nil
}

func lenOf(v mat.Vector) int {
	if v == nil {
		return 0
	}

	return v.Len()
}

// Estimate returns the current state estimate and its covariance.
func (k *KF) Estimate() (filter.Estimate, error) {
	return estimate.NewBaseWithCov(k.x, k.p)
}

// State returns a copy of the current state estimate.
func (k *KF) State() mat.Vector {
	return mat.VecDenseCopyOf(k.x)
}

// Cov returns KF covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.p.SymmetricDim(), nil)
	cov.CopySym(k.p)

	return cov
}

// Gain returns Kalman gain of the last update
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

// Innovation returns innovation vector of the last update
func (k *KF) Innovation() mat.Vector {
	return mat.VecDenseCopyOf(k.inn)
}

// MeasurementMatrix returns the measurement matrix used by the last update.
func (k *KF) MeasurementMatrix() mat.Matrix {
	return mat.DenseCopyOf(k.h)
}

// Dim returns state dimension
func (k *KF) Dim() int {
	return k.dim
}

// Steps returns the number of successful updates
func (k *KF) Steps() int {
	return k.steps
}

// Extended reports whether k runs the extended update path
func (k *KF) Extended() bool {
	return k.extended
}
