// Package literal parses and formats nested-bracket numeric array literals.
//
// A flat vector is written as [v1 v2 ...] with whitespace (or comma) separated
// floats, a matrix as [[row1] [row2] ...] and higher dimensional arrays nest
// further. A bare number such as 0.0001 is a 0-dimensional scalar and a bare
// list of numbers such as "1 2 3" is a flat vector.
package literal

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformed is returned when a literal is not a well-formed array.
var ErrMalformed = errors.New("malformed array literal")

// Array is an n-dimensional array of floats stored in row-major order.
// A 0-dimensional array has an empty Shape and a single element.
type Array struct {
	Shape []int
	Data  []float64
}

// Parse parses literal s and returns the array of the implied shape.
// It returns ErrMalformed if s has unbalanced brackets, non-numeric tokens,
// empty or ragged sub-arrays.
func Parse(s string) (*Array, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Wrap(ErrMalformed, "empty literal")
	}

	if s[0] != '[' {
		vals, err := parseNumbers(s)
		if err != nil {
			return nil, err
		}
		if len(vals) == 1 {
			return &Array{Data: vals}, nil
		}
		return &Array{Shape: []int{len(vals)}, Data: vals}, nil
	}

	if err := checkBalanced(s); err != nil {
		return nil, err
	}

	return parseBracketed(s)
}

// MustParse is like Parse but panics if s can not be parsed.
func MustParse(s string) *Array {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return a
}

// checkBalanced makes sure the opening bracket of s is matched by its last character.
func checkBalanced(s string) error {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return errors.Wrapf(ErrMalformed, "unexpected ']' at %d", i)
			}
			if depth == 0 && i != len(s)-1 {
				return errors.Wrapf(ErrMalformed, "trailing content after position %d", i)
			}
		}
	}

	if depth != 0 {
		return errors.Wrapf(ErrMalformed, "%d unclosed '['", depth)
	}

	return nil
}

func parseBracketed(s string) (*Array, error) {
	inner := s[1 : len(s)-1]

	if !strings.Contains(inner, "[") {
		if strings.TrimSpace(inner) == "" {
			return nil, errors.Wrap(ErrMalformed, "empty array")
		}
		vals, err := parseNumbers(inner)
		if err != nil {
			return nil, err
		}
		return &Array{Shape: []int{len(vals)}, Data: vals}, nil
	}

	var subs []*Array
	depth, start := 0, 0
	for i, r := range inner {
		switch {
		case r == '[':
			if depth == 0 {
				start = i
			}
			depth++
		case r == ']':
			depth--
			if depth == 0 {
				sub, err := parseBracketed(inner[start : i+1])
				if err != nil {
					return nil, err
				}
				subs = append(subs, sub)
			}
		case depth == 0 && !isSeparator(r):
			return nil, errors.Wrapf(ErrMalformed, "unexpected %q between sub-arrays", r)
		}
	}

	return Stack(subs)
}

// Stack joins arrays of identical shape along a new leading dimension.
// It returns ErrMalformed if arrays is empty or the shapes differ.
func Stack(arrays []*Array) (*Array, error) {
	if len(arrays) == 0 {
		return nil, errors.Wrap(ErrMalformed, "nothing to stack")
	}

	shape := arrays[0].Shape
	data := make([]float64, 0, len(arrays)*len(arrays[0].Data))
	for i, a := range arrays {
		if !equalShape(shape, a.Shape) {
			return nil, errors.Wrapf(ErrMalformed, "sub-array %d has shape %v, expected %v", i, a.Shape, shape)
		}
		data = append(data, a.Data...)
	}

	return &Array{
		Shape: append([]int{len(arrays)}, shape...),
		Data:  data,
	}, nil
}

func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, isSeparator)
	if len(fields) == 0 {
		return nil, errors.Wrap(ErrMalformed, "no numbers")
	}

	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "invalid number %q", f)
		}
		vals[i] = v
	}

	return vals, nil
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == ','
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// NDim returns the number of array dimensions.
func (a *Array) NDim() int {
	return len(a.Shape)
}

// Len returns the number of array elements.
func (a *Array) Len() int {
	return len(a.Data)
}

// At returns the element at the given index.
// It panics if the number of indices does not match NDim or any index is out of range.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic("literal: index dimension mismatch")
	}

	off := 0
	for i, n := range a.Shape {
		if idx[i] < 0 || idx[i] >= n {
			panic("literal: index out of range")
		}
		off = off*n + idx[i]
	}

	return a.Data[off]
}

// Dense returns the array as a gonum matrix.
// Scalars become 1 x 1 matrices and vectors become single row matrices.
// It returns error for arrays with more than two dimensions.
func (a *Array) Dense() (*mat.Dense, error) {
	data := make([]float64, len(a.Data))
	copy(data, a.Data)

	switch len(a.Shape) {
	case 0:
		return mat.NewDense(1, 1, data), nil
	case 1:
		return mat.NewDense(1, a.Shape[0], data), nil
	case 2:
		return mat.NewDense(a.Shape[0], a.Shape[1], data), nil
	}

	return nil, errors.Errorf("cannot convert %d-dimensional array to matrix", len(a.Shape))
}

// Vector returns all array elements as a vector in row-major order.
func (a *Array) Vector() *mat.VecDense {
	data := make([]float64, len(a.Data))
	copy(data, a.Data)

	return mat.NewVecDense(len(data), data)
}

// String implements the Stringer interface. The result parses back to an equal array.
func (a *Array) String() string {
	if len(a.Shape) == 0 {
		if len(a.Data) == 0 {
			return "[]"
		}
		return formatFloat(a.Data[0])
	}

	var b strings.Builder
	a.write(&b, 0, 0)

	return b.String()
}

func (a *Array) write(b *strings.Builder, dim, off int) {
	stride := 1
	for _, n := range a.Shape[dim+1:] {
		stride *= n
	}

	b.WriteByte('[')
	for i := 0; i < a.Shape[dim]; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if dim == len(a.Shape)-1 {
			b.WriteString(formatFloat(a.Data[off+i]))
			continue
		}
		a.write(b, dim+1, off+i*stride)
	}
	b.WriteByte(']')
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FromMatrix returns a 2-dimensional array holding a copy of m.
func FromMatrix(m mat.Matrix) *Array {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}

	return &Array{Shape: []int{r, c}, Data: data}
}

// FromVector returns a 1-dimensional array holding a copy of v.
func FromVector(v mat.Vector) *Array {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}

	return &Array{Shape: []int{len(data)}, Data: data}
}

// Format formats v as a flat vector literal.
func Format(v mat.Vector) string {
	return FromVector(v).String()
}
