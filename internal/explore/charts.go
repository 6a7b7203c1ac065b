package explore

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var errNoData = errors.New("no data to plot")

// Figure sizes, matching the 12x6 and 15x8 inch canvases of the original
// notebooks.
var (
	wideWidth   = 12 * vg.Inch
	wideHeight  = 6 * vg.Inch
	trendWidth  = 15 * vg.Inch
	trendHeight = 8 * vg.Inch
)

type chartLabels struct {
	Title  string
	XLabel string
	YLabel string
}

func newPlot(labels chartLabels) *plot.Plot {
	p := plot.New()
	p.Title.Text = labels.Title
	p.X.Label.Text = labels.XLabel
	p.Y.Label.Text = labels.YLabel
	return p
}

func saveHistogram(path string, labels chartLabels, values []float64, bins int) error {
	if len(values) == 0 {
		return errNoData
	}
	p := newPlot(labels)
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("building histogram: %w", err)
	}
	p.Add(hist)
	if err := p.Save(wideWidth, wideHeight, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

type lineSeries struct {
	Name   string
	Points plotter.XYs
}

func saveLines(path string, labels chartLabels, series []lineSeries) error {
	if len(series) == 0 {
		return errNoData
	}
	p := newPlot(labels)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return fmt.Errorf("building line %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(0)
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}
	if err := p.Save(trendWidth, trendHeight, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func saveHorizontalBars(path string, labels chartLabels, names []string, values []float64) error {
	if len(values) == 0 {
		return errNoData
	}
	p := newPlot(labels)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(12))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalY(names...)
	if err := p.Save(wideWidth, wideHeight, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
