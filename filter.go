package filter

import "gonum.org/v1/gonum/mat"

// Filter is a recursive state estimator driven by a stream of measurements.
type Filter interface {
	// Update corrects the filter state using measurement z and returns the new state estimate
	Update(z mat.Vector) (mat.Vector, error)
	// Estimate returns the current filter estimate
	Estimate() (Estimate, error)
}

// Estimate is dynamical system filter estimate
type Estimate interface {
	// Val returns estimate value
	Val() mat.Vector
	// Cov returns estimate covariance
	Cov() mat.Symmetric
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise to its initial seed
	Reset() error
}
