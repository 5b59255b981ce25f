package kalman

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// NumericJacobian returns JacobianFunc which approximates the Jacobian of the
// measurement model h with central finite differences. ny is the measurement dimension.
func NumericJacobian(h MeasurementFunc, ny int) JacobianFunc {
	return func(x mat.Vector) (mat.Matrix, error) {
		var evalErr error

		fn := func(y, xNow []float64) {
			if evalErr != nil {
				return
			}

			xv := mat.NewVecDense(len(xNow), append([]float64(nil), xNow...))
			yNext, err := h(xv)
			if err != nil {
				evalErr = err
				return
			}

			if yNext.Len() != len(y) {
				evalErr = errors.Wrapf(ErrDimensionMismatch, "invalid measurement length: %d, expected %d", yNext.Len(), len(y))
				return
			}

			for i := range y {
				y[i] = yNext.AtVec(i)
			}
		}

		jac := mat.NewDense(ny, x.Len(), nil)
		fd.Jacobian(jac, fn, mat.Col(nil, 0, x), &fd.JacobianSettings{
			Formula: fd.Central,
		})

		if evalErr != nil {
			return nil, evalErr
		}

		return jac, nil
	}
}
