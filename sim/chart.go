package sim

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders an interactive HTML line chart of the measured and
// estimated series into w.
func WriteChart(w io.Writer, measured, estimated []float64) error {
	if len(measured) == 0 || len(estimated) == 0 {
		return fmt.Errorf("invalid data supplied")
	}

	if len(measured) != len(estimated) {
		return fmt.Errorf("invalid data dimensions: %d measured, %d estimated", len(measured), len(estimated))
	}

	steps := make([]int, len(measured))
	for i := range steps {
		steps[i] = i
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Kalman Filter", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Kalman Filter", Subtitle: fmt.Sprintf("steps=%d", len(measured))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value", NameLocation: "middle", NameGap: 30}),
	)

	line.SetXAxis(steps).
		AddSeries("measured", lineData(measured), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)})).
		AddSeries("estimated", lineData(estimated), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	return line.Render(w)
}

func lineData(vals []float64) []opts.LineData {
	data := make([]opts.LineData, len(vals))
	for i, v := range vals {
		data[i] = opts.LineData{Value: v}
	}

	return data
}
