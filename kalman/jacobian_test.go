package kalman

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNumericJacobian(t *testing.T) {
	assert := assert.New(t)

	// range to a point at height 10 above the origin
	h := func(x mat.Vector) (mat.Vector, error) {
		return vec(math.Hypot(x.AtVec(0), 10), x.AtVec(0)*x.AtVec(1)), nil
	}

	jac := NumericJacobian(h, 2)
	j, err := jac(vec(5, 2))
	require.NoError(t, err)

	rows, cols := j.Dims()
	assert.Equal(2, rows)
	assert.Equal(2, cols)

	r := math.Hypot(5, 10)
	assert.InDelta(5/r, j.At(0, 0), 1e-6)
	assert.InDelta(0.0, j.At(0, 1), 1e-6)
	assert.InDelta(2.0, j.At(1, 0), 1e-6)
	assert.InDelta(5.0, j.At(1, 1), 1e-6)
}

func TestNumericJacobianErrors(t *testing.T) {
	assert := assert.New(t)

	failing := func(mat.Vector) (mat.Vector, error) {
		return nil, errors.New("no signal")
	}
	j, err := NumericJacobian(failing, 1)(vec(1, 2))
	assert.Nil(j)
	assert.Error(err)

	wrongLen := func(mat.Vector) (mat.Vector, error) {
		return vec(1, 2, 3), nil
	}
	j, err = NumericJacobian(wrongLen, 1)(vec(1, 2))
	assert.Nil(j)
	assert.True(errors.Is(err, ErrDimensionMismatch))
}

func TestExtendedRange(t *testing.T) {
	assert := assert.New(t)

	// constant velocity target observed through its range from a sensor at height 10
	h := func(x mat.Vector) (mat.Vector, error) {
		return vec(math.Hypot(x.AtVec(0), 10)), nil
	}

	c := &Config{
		Dim:              2,
		InitState:        vec(1, 0.5),
		InitCov:          mat.NewDense(2, 2, []float64{10, 0, 0, 10}),
		Transition:       mat.NewDense(2, 2, []float64{1, 1, 0, 1}),
		ProcessNoise:     mat.NewDense(2, 2, []float64{1e-4, 0, 0, 1e-4}),
		MeasurementNoise: mat.NewDense(1, 1, []float64{0.01}),
		Extended:         true,
		Jacobian:         NumericJacobian(h, 1),
		Measure:          h,
	}

	f, err := New(c)
	require.NoError(t, err)

	for i := 1; i <= 40; i++ {
		pos := 2.0 * float64(i)
		_, err := f.Update(vec(math.Hypot(pos, 10)))
		require.NoError(t, err)
	}

	assert.InDelta(80.0, f.State().AtVec(0), 2.0)
	assert.InDelta(2.0, f.State().AtVec(1), 0.2)
}
