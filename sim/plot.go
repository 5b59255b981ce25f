package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewSeriesPlot creates new plot of the filter run from two data series indexed by step:
// measured:  measurement values
// estimated: filter values
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either of the supplied series is empty
// * the supplied series differ in length
// * gonum plot fails to be created
func NewSeriesPlot(measured, estimated []float64) (*plot.Plot, error) {
	if len(measured) == 0 || len(estimated) == 0 {
		return nil, fmt.Errorf("invalid data supplied")
	}

	if len(measured) != len(estimated) {
		return nil, fmt.Errorf("invalid data dimensions: %d measured, %d estimated", len(measured), len(estimated))
	}

	p := plot.New()

	p.Title.Text = "Kalman Filter"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Value"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a line with points for measurement data
	measLine, measPoints, err := plotter.NewLinePoints(makeSeries(measured))
	if err != nil {
		return nil, fmt.Errorf("failed to create measurement line: %v", err)
	}
	measLine.Color = color.RGBA{G: 160, A: 255}
	measLine.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	measPoints.GlyphStyle.Color = color.RGBA{G: 160, A: 255}
	measPoints.Shape = draw.CircleGlyph{}
	measPoints.GlyphStyle.Radius = vg.Points(2)

	p.Add(measLine, measPoints)
	p.Legend.Add("measured", measLine, measPoints)

	// Make a line for filter data
	filterLine, err := plotter.NewLine(makeSeries(estimated))
	if err != nil {
		return nil, fmt.Errorf("failed to create filter line: %v", err)
	}
	filterLine.Color = color.RGBA{R: 255, B: 128, A: 255}
	filterLine.Width = vg.Points(1.5)

	p.Add(filterLine)
	p.Legend.Add("estimated", filterLine)

	return p, nil
}

// SavePlot renders the plot of the filter run into a PNG, SVG or PDF file picked by the path extension.
func SavePlot(path string, measured, estimated []float64) error {
	p, err := NewSeriesPlot(measured, estimated)
	if err != nil {
		return err
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func makeSeries(vals []float64) plotter.XYs {
	pts := make(plotter.XYs, len(vals))
	for i, v := range vals {
		pts[i].X = float64(i)
		pts[i].Y = v
	}

	return pts
}
