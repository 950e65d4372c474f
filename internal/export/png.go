// Package export renders trajectory series as image files.
package export

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData indicates an empty series.
var ErrNoData = errors.New("export: no data to plot")

// Image size of every exported plot.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Histogram writes a histogram of data with the given number of bins. The
// image format follows the file extension (png, svg, pdf, ...).
func Histogram(path, title, xlabel string, data []float64, bins int) error {
	if len(data) == 0 {
		return ErrNoData
	}
	if bins < 1 {
		bins = 1
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(data), bins)
	if err != nil {
		return fmt.Errorf("export: %s: %w", title, err)
	}
	p.Add(h)
	return p.Save(Width, Height, path)
}

// Series writes data against sweep index as a line plot.
func Series(path, title, ylabel string, data []float64) error {
	if len(data) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sweep"
	p.Y.Label.Text = ylabel

	pts := make(plotter.XYs, len(data))
	for i, v := range data {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("export: %s: %w", title, err)
	}
	p.Add(line, plotter.NewGrid())
	return p.Save(Width, Height, path)
}
