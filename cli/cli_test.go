package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/leoorshansky/KalmanFilterExample/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func writeData(t *testing.T, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("# scalar readings around 4\n")
	for i := 0; i < n; i++ {
		z := 4.3
		if i%2 == 1 {
			z = 3.7
		}
		fmt.Fprintf(&b, "[%g]\n", z)
	}

	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	return path
}

func runApp(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"kalman"}, args...))

	return out.String(), errOut.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestKalmanCommand(t *testing.T) {
	assert := assert.New(t)

	data := writeData(t, 30)
	out, logs, err := runApp("kalman", "-df", data, "-d", "1", "-x0", "0", "-p0", "1000", "-f", "1", "-q", "0.0001", "-r", "0.01")
	require.NoError(t, err)

	ls := lines(out)
	require.Len(t, ls, 30)

	last, err := literal.Parse(ls[29])
	require.NoError(t, err)
	assert.Equal([]int{1}, last.Shape)
	assert.InDelta(4.0, last.Data[0], 0.1)
	assert.Contains(logs, "filter run complete")
}

func TestKalmanCommandConfig(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	data := writeData(t, 10)

	cfgPath := filepath.Join(dir, "filter.yaml")
	cfg := fmt.Sprintf(`
dimension: 2
data_file: %s
initial_guess: [0, 0]
initial_error: [[1000, 0], [0, 1000]]
transition_matrix: "[[1 1] [0 1]]"
process_error_matrix: "[[0.0001 0] [0 0.0001]]"
measurement_error_matrix: 0.1
measurement_matrix: [1, 0]
`, data)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	dbPath := filepath.Join(dir, "runs.sqlite")
	plotPath := filepath.Join(dir, "run.png")
	htmlPath := filepath.Join(dir, "run.html")

	out, _, err := runApp("kalman", "--config", cfgPath, "--joseph", "--format", "table",
		"--db", dbPath, "--plot", plotPath, "--html", htmlPath)
	require.NoError(t, err)
	assert.Contains(out, "ESTIMATE")
	assert.Contains(out, "STDDEV")

	for _, path := range []string{plotPath, htmlPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(info.Size())
	}

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	ids, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	run, err := db.Run(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(data, run.Source)
	assert.Equal(2, run.Dim)
	assert.Contains(run.Config, "joseph: true")

	steps, err := db.Steps(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(steps, 10)
	assert.Equal(2, steps[9].State.Len())

	// flags override the file
	out, _, err = runApp("kalman", "--config", cfgPath, "-d", "1", "-x0", "0", "-p0", "1", "-f", "1", "-q", "0", "-H", "1")
	require.NoError(t, err)
	assert.Len(lines(out), 10)
}

func TestKalmanCommandErrors(t *testing.T) {
	assert := assert.New(t)

	data := writeData(t, 3)
	base := []string{"-d", "1", "-x0", "0", "-p0", "1000", "-f", "1", "-q", "0.0001", "-r", "0.01"}

	_, _, err := runApp(append([]string{"kalman"}, base...)...)
	assert.Error(err)

	_, _, err = runApp(append([]string{"kalman", "-df", filepath.Join(t.TempDir(), "missing.txt")}, base...)...)
	assert.Error(err)

	_, _, err = runApp("kalman", "-df", data, "-d", "1", "-x0", "[0", "-p0", "1000", "-f", "1", "-q", "0.0001", "-r", "0.01")
	assert.True(errors.Is(err, literal.ErrMalformed))

	_, _, err = runApp("kalman", "-df", data, "-d", "2", "-x0", "0", "-p0", "1000", "-f", "1", "-q", "0.0001", "-r", "0.01")
	assert.True(errors.Is(err, kalman.ErrDimensionMismatch))

	_, _, err = runApp(append([]string{"kalman", "-df", data, "--format", "xml"}, base...)...)
	assert.Error(err)

	// a zero covariance filter has a singular innovation on every step
	singular := []string{"kalman", "-df", data, "-d", "1", "-x0", "0", "-p0", "0", "-f", "1", "-q", "0", "-r", "0"}
	_, _, err = runApp(singular...)
	assert.True(errors.Is(err, kalman.ErrSingularInnovation))

	out, logs, err := runApp(append(singular, "--skip-singular")...)
	assert.NoError(err)
	assert.Equal([]string{"[0]", "[0]", "[0]"}, lines(out))
	assert.Contains(logs, "skipping measurement")
}

func TestExampleCommand(t *testing.T) {
	assert := assert.New(t)

	for _, model := range []string{"constant", "increasing"} {
		out, _, err := runApp("example", "-m", model, "--seed", "5")
		require.NoError(t, err)
		assert.Len(lines(out), 30)

		again, _, err := runApp("example", "-m", model, "--seed", "5")
		require.NoError(t, err)
		assert.Equal(out, again)
	}

	out, _, err := runApp("example", "-m", "increasing", "-q", "[0.0001 0.001]", "--steps", "5", "--format", "table")
	require.NoError(t, err)
	assert.Contains(out, "MEASUREMENT")

	_, _, err = runApp("example", "-m", "bogus")
	assert.Error(err)

	_, _, err = runApp("example", "-q", "[1 2]")
	assert.Error(err)
}

func TestDriver(t *testing.T) {
	assert := assert.New(t)

	newFilter := func(p, q float64) *kalman.KF {
		f, err := kalman.New(&kalman.Config{
			Dim:               1,
			InitState:         mat.NewDense(1, 1, []float64{1}),
			InitCov:           mat.NewDense(1, 1, []float64{p}),
			Transition:        mat.NewDense(1, 1, []float64{1}),
			ProcessNoise:      mat.NewDense(1, 1, []float64{q}),
			MeasurementNoise:  mat.NewDense(1, 1, []float64{0}),
			MeasurementMatrix: mat.NewDense(1, 1, []float64{1}),
		})
		require.NoError(t, err)
		return f
	}
	zs := []mat.Vector{mat.NewVecDense(1, []float64{2}), mat.NewVecDense(1, []float64{3})}

	core, recorded := observer.New(zap.WarnLevel)
	d := &Driver{Filter: newFilter(0, 0), SkipSingular: true, Logger: zap.New(core).Sugar()}

	steps, err := d.Run(context.Background(), zs)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	for _, s := range steps {
		assert.True(s.Skipped)
		assert.Equal(1.0, s.State.AtVec(0))
	}
	assert.Equal(2, recorded.FilterMessage("skipping measurement").Len())

	d = &Driver{Filter: newFilter(0, 0)}
	steps, err = d.Run(context.Background(), zs)
	assert.True(errors.Is(err, kalman.ErrSingularInnovation))
	assert.Empty(steps)

	var seen []int
	d = &Driver{Filter: newFilter(1, 1), OnStep: func(s store.Step) error {
		seen = append(seen, s.Index)
		return nil
	}}
	steps, err = d.Run(context.Background(), zs)
	require.NoError(t, err)
	assert.Equal([]int{0, 1}, seen)
	assert.Equal([]float64{2, 3}, Component(steps, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	steps, err = (&Driver{Filter: newFilter(1, 1)}).Run(ctx, zs)
	assert.True(errors.Is(err, context.Canceled))
	assert.Empty(steps)
}
