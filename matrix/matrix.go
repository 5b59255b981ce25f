package matrix

import (
	gmatrix "github.com/milosgajdos/matrix"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Reshape returns a rows x cols copy of m whose elements are taken from m in row-major order.
// If rows is -1 it is inferred from the number of elements in m and cols.
// It returns error if the number of elements in m can not fill the requested shape.
func Reshape(m mat.Matrix, rows, cols int) (*mat.Dense, error) {
	if m == nil {
		return nil, errors.New("nil matrix")
	}

	r, c := m.Dims()
	n := r * c

	if rows == -1 {
		if cols <= 0 || n%cols != 0 {
			return nil, errors.Errorf("cannot reshape [%d x %d] into [? x %d]", r, c, cols)
		}
		rows = n / cols
	}

	if rows <= 0 || cols <= 0 || rows*cols != n {
		return nil, errors.Errorf("cannot reshape [%d x %d] into [%d x %d]", r, c, rows, cols)
	}

	data := make([]float64, 0, n)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}

	return mat.NewDense(rows, cols, data), nil
}

// Identity returns n x n identity matrix.
// It panics if n is not positive.
func Identity(n int) *mat.Dense {
	eye, err := gmatrix.NewDenseValIdentity(n, 1.0)
	if err != nil {
		panic(err)
	}

	return eye
}

// Symmetrize returns the symmetric part of a square matrix m: (m + m')/2.
// It returns error if m is not square.
func Symmetrize(m mat.Matrix) (*mat.SymDense, error) {
	r, c := m.Dims()
	if r != c {
		return nil, errors.Errorf("matrix not square: [%d x %d]", r, c)
	}

	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}

	return sym, nil
}

// IsSymmetric reports whether m is square and m[i,j] and m[j,i] differ by no more than tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}

	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			d := m.At(i, j) - m.At(j, i)
			if d > tol || d < -tol {
				return false
			}
		}
	}

	return true
}

// Diag returns a copy of the diagonal of a square matrix m.
func Diag(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	diag := make([]float64, r)
	for i := range diag {
		diag[i] = m.At(i, i)
	}

	return diag
}
