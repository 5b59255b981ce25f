package sim

import (
	"fmt"

	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"gonum.org/v1/gonum/mat"
)

const (
	// ModelConstant assumes the measured level stays put
	ModelConstant = "constant"
	// ModelIncreasing assumes the measured level grows at a steady rate
	ModelIncreasing = "increasing"
)

// Models lists the names of the example models.
var Models = []string{ModelConstant, ModelIncreasing}

// ExampleModel returns the filter configuration of the named example model.
// processError scales the process noise: the constant model takes a single
// value, the increasing model multiplies the discrete white noise acceleration
// covariance [[1/3 1/2] [1/2 1]] element-wise, broadcasting a scalar or a row.
// It returns error if the model is unknown or processError can't be applied.
func ExampleModel(name string, processError *literal.Array) (*kalman.Config, error) {
	if processError == nil || processError.Len() == 0 {
		return nil, fmt.Errorf("missing process error")
	}

	switch name {
	case ModelConstant:
		if processError.Len() != 1 {
			return nil, fmt.Errorf("constant model expects a single process error, got %d values", processError.Len())
		}

		return &kalman.Config{
			Dim:               1,
			InitState:         mat.NewDense(1, 1, []float64{0}),
			InitCov:           mat.NewDense(1, 1, []float64{1000}),
			Transition:        mat.NewDense(1, 1, []float64{1}),
			ProcessNoise:      mat.NewDense(1, 1, []float64{processError.Data[0]}),
			MeasurementNoise:  mat.NewDense(1, 1, []float64{0.01}),
			MeasurementMatrix: mat.NewDense(1, 1, []float64{1}),
		}, nil
	case ModelIncreasing:
		q, err := scale(processError, mat.NewDense(2, 2, []float64{1.0 / 3, 1.0 / 2, 1.0 / 2, 1}))
		if err != nil {
			return nil, err
		}

		return &kalman.Config{
			Dim:               2,
			InitState:         mat.NewVecDense(2, []float64{0, 0}),
			InitCov:           mat.NewDense(2, 2, []float64{1000, 0, 0, 1000}),
			Transition:        mat.NewDense(2, 2, []float64{1, 1, 0, 1}),
			ProcessNoise:      q,
			MeasurementNoise:  mat.NewDense(1, 1, []float64{0.1}),
			MeasurementMatrix: mat.NewDense(1, 2, []float64{1, 0}),
		}, nil
	}

	return nil, fmt.Errorf("unknown model: %q", name)
}

// scale multiplies m element-wise by a, broadcasting a scalar to every element
// and a row of length cols(m) to every row.
func scale(a *literal.Array, m *mat.Dense) (*mat.Dense, error) {
	rows, cols := m.Dims()

	var at func(i, j int) float64
	switch a.Len() {
	case 1:
		at = func(int, int) float64 { return a.Data[0] }
	case cols:
		at = func(_, j int) float64 { return a.Data[j] }
	case rows * cols:
		at = func(i, j int) float64 { return a.Data[i*cols+j] }
	default:
		return nil, fmt.Errorf("process error with %d values can't scale a %dx%d matrix", a.Len(), rows, cols)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return v * at(i, j)
	}, m)

	return out, nil
}
