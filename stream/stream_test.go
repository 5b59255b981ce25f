package stream

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const data = `# position readings
[1.5]
2.5

[3 4]
  [[5 6]]
`

func TestScanner(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(strings.NewReader(data))

	var got [][]float64
	var lines []int
	for s.Scan() {
		z := s.Measurement()
		vals := make([]float64, z.Len())
		for i := range vals {
			vals[i] = z.AtVec(i)
		}
		got = append(got, vals)
		lines = append(lines, s.Line())
	}

	assert.NoError(s.Err())
	assert.Equal([][]float64{{1.5}, {2.5}, {3, 4}, {5, 6}}, got)
	assert.Equal([]int{2, 3, 5, 6}, lines)
}

func TestScannerMalformed(t *testing.T) {
	assert := assert.New(t)

	s := NewScanner(strings.NewReader("[1]\n[2\n[3]\n"))
	assert.True(s.Scan())
	assert.False(s.Scan())
	assert.False(s.Scan())

	err := s.Err()
	assert.True(errors.Is(err, literal.ErrMalformed))
	assert.Contains(err.Error(), "line 2")
}

func TestRead(t *testing.T) {
	assert := assert.New(t)

	zs, err := Read(strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(zs)

	zs, err = Read(strings.NewReader("1\nfoo\n"))
	assert.Nil(zs)
	assert.Error(err)
}

func TestReadFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	zs, err := ReadFile(path)
	assert.NoError(err)
	assert.Len(zs, 4)
	assert.Equal(2, zs[2].Len())

	zs, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Nil(zs)
	assert.Error(err)
}
