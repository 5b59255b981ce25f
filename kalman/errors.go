package kalman

import "github.com/pkg/errors"

var (
	// ErrDimensionMismatch is returned when a supplied matrix or vector shape
	// is inconsistent with the filter state or measurement dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrMissingLinearization is returned when an extended filter is updated
	// without both the measurement Jacobian and the measurement function.
	ErrMissingLinearization = errors.New("extended filter requires jacobian and measurement functions")
	// ErrSingularInnovation is returned when the innovation covariance can not be inverted.
	ErrSingularInnovation = errors.New("singular innovation covariance")
)
