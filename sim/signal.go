package sim

import (
	"fmt"
	"math"

	filter "github.com/leoorshansky/KalmanFilterExample"
	"gonum.org/v1/gonum/mat"
)

const (
	// base is the signal value at step 0
	base = 3.0
	// slope is the signal increment per step
	slope = 0.1
	// wobble is the amplitude of the periodic component
	wobble = 0.3
	// freq is the frequency of the periodic component in cycles per step
	freq = 0.13
)

// Constant generates n scalar measurements of a slowly drifting level observed
// through noise. The constant model filter assumes the level does not change.
// It returns error if noise is not one dimensional.
func Constant(n int, noise filter.Noise) ([]mat.Vector, error) {
	return series(n, noise)
}

// Increasing generates n scalar measurements of a level growing by a fixed
// step each sample. The increasing model filter tracks level and rate.
// It returns error if noise is not one dimensional.
func Increasing(n int, noise filter.Noise) ([]mat.Vector, error) {
	return series(n, noise)
}

// Signal returns the noiseless value of the example signal at step k.
func Signal(k int) float64 {
	kf := float64(k)
	return base + slope*kf + wobble*math.Sin(2*math.Pi*freq*kf)
}

func series(n int, noise filter.Noise) ([]mat.Vector, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid number of samples: %d", n)
	}

	if noise != nil && len(noise.Mean()) != 1 {
		return nil, fmt.Errorf("invalid noise dimension: %d", len(noise.Mean()))
	}

	zs := make([]mat.Vector, n)
	for k := range zs {
		z := Signal(k)
		if noise != nil {
			z += noise.Sample().AtVec(0)
		}
		zs[k] = mat.NewVecDense(1, []float64{z})
	}

	return zs, nil
}

// Values returns the first element of every vector in vs.
func Values(vs []mat.Vector) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.AtVec(0)
	}

	return out
}
