// Package icplot draws fitted interval-censored distribution functions as
// right-continuous step curves, with optional reference curves for overlay.
package icplot

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ChaoyuYuan/iclogcondist/lcmle"
)

// FitPlotter accumulates one or more fitted distribution functions and
// renders them as a single plot.
type FitPlotter struct {
	pts    []plotter.XYs
	labels []string
	lines  []*plotter.Line

	plt *plot.Plot

	// Figure size in inches.
	width  float64
	height float64
}

// NewFitPlotter returns a FitPlotter with a 4x4 inch figure.
func NewFitPlotter() *FitPlotter {

	plt, err := plot.New()
	if err != nil {
		panic(err)
	}

	return &FitPlotter{plt: plt, width: 4, height: 4}
}

// Width sets the figure width in inches.
func (fp *FitPlotter) Width(w float64) *FitPlotter {
	fp.width = w
	return fp
}

// Height sets the figure height in inches.
func (fp *FitPlotter) Height(h float64) *FitPlotter {
	fp.height = h
	return fp
}

// addSteps appends a right-continuous step curve through the given support
// points and cumulative values, starting from zero at the origin.
func (fp *FitPlotter) addSteps(ti, pr []float64, label string) {

	m := len(ti)
	n := 2*m + 1

	pts := make(plotter.XYs, n)

	j := 0
	pts[j].X = 0
	pts[j].Y = 0
	j++

	for i := range ti {
		pts[j].X = ti[i]
		pts[j].Y = pts[j-1].Y
		j++
		pts[j].X = ti[i]
		pts[j].Y = pr[i]
		j++
	}

	fp.pts = append(fp.pts, pts)
	fp.labels = append(fp.labels, label)

	line, err := plotter.NewLine(pts)
	if err != nil {
		panic(err)
	}
	line.Color = plotutil.Color(len(fp.lines))
	fp.lines = append(fp.lines, line)
}

// Add plots a fitted distribution function.
func (fp *FitPlotter) Add(rslt *lcmle.Results, label string) *FitPlotter {
	fp.addSteps(rslt.Support(), rslt.CumProb(), label)
	return fp
}

// AddReference overlays a reference curve given as (x, F(x)) pairs, e.g. the
// distribution function that generated a simulated dataset.
func (fp *FitPlotter) AddReference(x, y []float64, label string) *FitPlotter {

	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}

	fp.pts = append(fp.pts, pts)
	fp.labels = append(fp.labels, label)

	line, err := plotter.NewLine(pts)
	if err != nil {
		panic(err)
	}
	line.Color = plotutil.Color(len(fp.lines))
	fp.lines = append(fp.lines, line)

	return fp
}

// Plot constructs the plot.
func (fp *FitPlotter) Plot() *FitPlotter {

	fp.plt.Y.Min = 0
	fp.plt.Y.Max = 1

	fp.plt.X.Label.Text = "Time"
	fp.plt.Y.Label.Text = "Cumulative probability"

	leg, err := plot.NewLegend()
	if err != nil {
		panic(err)
	}

	for i := range fp.lines {
		fp.plt.Add(fp.lines[i])
		leg.Add(fp.labels[i], fp.lines[i])
	}

	if len(fp.lines) > 1 {
		leg.Top = true
		leg.Left = true
		fp.plt.Legend = leg
	}

	return fp
}

// GetPlotStruct returns the underlying plot for further customization.
func (fp *FitPlotter) GetPlotStruct() *plot.Plot {
	return fp.plt
}

// Save renders the plot to a file; the image format follows the file name
// extension.
func (fp *FitPlotter) Save(fname string) {

	w := vg.Length(fp.width) * vg.Inch
	h := vg.Length(fp.height) * vg.Inch
	if err := fp.plt.Save(w, h, fname); err != nil {
		panic(err)
	}
}
