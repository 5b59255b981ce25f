package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeriesPlot(t *testing.T) {
	assert := assert.New(t)

	measured := []float64{1, 2, 3}
	estimated := []float64{0.9, 1.9, 2.9}

	plt, err := NewSeriesPlot(measured, estimated)
	assert.NotNil(plt)
	assert.NoError(err)

	plt, err = NewSeriesPlot(nil, nil)
	assert.Nil(plt)
	assert.Error(err)

	plt, err = NewSeriesPlot(measured, estimated[:2])
	assert.Nil(plt)
	assert.Error(err)
}

func TestSavePlot(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "run.png")
	assert.NoError(SavePlot(path, []float64{1, 2, 3}, []float64{1, 1.5, 2}))

	info, err := os.Stat(path)
	assert.NoError(err)
	assert.NotZero(info.Size())

	assert.Error(SavePlot(path, nil, nil))
}

func TestWriteChart(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteChart(&buf, []float64{1, 2, 3}, []float64{1, 1.5, 2}))

	out := buf.String()
	assert.Contains(out, "<html")
	assert.Contains(out, "measured")
	assert.Contains(out, "estimated")

	buf.Reset()
	assert.Error(WriteChart(&buf, []float64{1}, nil))
	assert.Error(WriteChart(&buf, []float64{1}, []float64{1, 2}))
	assert.Zero(buf.Len())
}
