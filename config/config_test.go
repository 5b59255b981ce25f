package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

const rampYAML = `
dimension: 2
data_file: data.txt
initial_guess: [0, 0]
initial_error: "[[1000 0] [0 1000]]"
transition_matrix:
  - [1, 1]
  - [0, 1]
process_error_matrix: [[0.0001, 0], [0, 0.0001]]
measurement_error_matrix: 0.1
measurement_matrix: "[1 0]"
joseph: true
`

func TestParse(t *testing.T) {
	assert := assert.New(t)

	c, err := Parse([]byte(rampYAML))
	require.NoError(t, err)

	assert.Equal(2, c.Dimension)
	assert.Equal("data.txt", c.DataFile)
	assert.True(c.Joseph)
	assert.False(c.Extended)

	for _, test := range []struct {
		got  *Literal
		want *literal.Array
	}{
		{c.InitialGuess, &literal.Array{Shape: []int{2}, Data: []float64{0, 0}}},
		{c.InitialError, &literal.Array{Shape: []int{2, 2}, Data: []float64{1000, 0, 0, 1000}}},
		{c.TransitionMatrix, &literal.Array{Shape: []int{2, 2}, Data: []float64{1, 1, 0, 1}}},
		{c.ProcessErrorMatrix, &literal.Array{Shape: []int{2, 2}, Data: []float64{0.0001, 0, 0, 0.0001}}},
		{c.MeasurementErrorMatrix, &literal.Array{Data: []float64{0.1}}},
		{c.MeasurementMatrix, &literal.Array{Shape: []int{2}, Data: []float64{1, 0}}},
	} {
		require.NotNil(t, test.got)
		if diff := cmp.Diff(test.want, test.got.Array); diff != "" {
			t.Errorf("unexpected literal (-want +got):\n%s", diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	for _, data := range []string{
		"dimension: [1",
		"bogus_key: 1",
		"initial_guess: \"[1 2\"",
		"transition_matrix: [[1, 2], [3]]",
		"initial_error: {a: 1}",
	} {
		c, err := Parse([]byte(data))
		assert.Nil(c, data)
		assert.Error(err, data)
	}
}

func TestDefault(t *testing.T) {
	assert := assert.New(t)

	c, err := Parse(nil)
	require.NoError(t, err)
	require.NotNil(t, c.MeasurementMatrix)
	assert.Equal(DefaultMeasurementMatrix, c.MeasurementMatrix.String())

	err = c.Validate()
	assert.True(errors.Is(err, ErrInvalid))
	// dimension plus five missing matrices
	assert.Len(multierr.Errors(err), 6)
}

func TestKalmanConfig(t *testing.T) {
	assert := assert.New(t)

	c, err := Parse([]byte(rampYAML))
	require.NoError(t, err)

	kc, err := c.KalmanConfig()
	require.NoError(t, err)
	assert.Equal(2, kc.Dim)
	assert.True(kc.Joseph)
	assert.False(kc.Extended)
	assert.True(mat.Equal(mat.NewDense(2, 2, []float64{1, 1, 0, 1}), kc.Transition))

	f, err := kalman.New(kc)
	require.NoError(t, err)

	x, err := f.Update(mat.NewVecDense(1, []float64{3}))
	assert.NoError(err)
	assert.Equal(2, x.Len())

	c.Extended = true
	kc, err = c.KalmanConfig()
	require.NoError(t, err)
	assert.False(kc.Extended)

	c.InitialGuess = &Literal{&literal.Array{Shape: []int{1, 1, 2}, Data: []float64{0, 0}}}
	kc, err = c.KalmanConfig()
	assert.Nil(kc)
	assert.Error(err)
}

func TestLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rampYAML), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	data, err := c.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(c, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	c, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(c)
	assert.Error(err)
}
