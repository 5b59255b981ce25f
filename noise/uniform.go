package noise

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform is independent uniform noise on [Min, Max) in every dimension
type Uniform struct {
	min, max float64
	size     int
	seed     uint64
	dist     distuv.Uniform
}

// NewUniform creates new size-dimensional Uniform noise on [min, max) seeded with seed.
// It returns error if size is not positive or min is not smaller than max.
func NewUniform(min, max float64, size int, seed uint64) (*Uniform, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	if min >= max {
		return nil, fmt.Errorf("invalid uniform noise bounds: [%g, %g)", min, max)
	}

	return &Uniform{
		min:  min,
		max:  max,
		size: size,
		seed: seed,
		dist: newUniformDist(min, max, seed),
	}, nil
}

func newUniformDist(min, max float64, seed uint64) distuv.Uniform {
	return distuv.Uniform{Min: min, Max: max, Src: rand.NewSource(seed)}
}

// Sample generates a sample from Uniform noise and returns it.
func (u *Uniform) Sample() mat.Vector {
	s := make([]float64, u.size)
	for i := range s {
		s[i] = u.dist.Rand()
	}

	return mat.NewVecDense(u.size, s)
}

// Mean returns Uniform mean.
func (u *Uniform) Mean() []float64 {
	mean := make([]float64, u.size)
	for i := range mean {
		mean[i] = u.dist.Mean()
	}

	return mean
}

// Cov returns diagonal covariance matrix of Uniform noise.
func (u *Uniform) Cov() mat.Symmetric {
	cov := mat.NewSymDense(u.size, nil)
	for i := 0; i < u.size; i++ {
		cov.SetSym(i, i, u.dist.Variance())
	}

	return cov
}

// Reset reseeds Uniform noise so it replays the same samples.
func (u *Uniform) Reset() error {
	u.dist = newUniformDist(u.min, u.max, u.seed)

	return nil
}

// String implements the Stringer interface.
func (u *Uniform) String() string {
	return fmt.Sprintf("Uniform{\nMin=%g\nMax=%g\nSize=%d\n}", u.min, u.max, u.size)
}
