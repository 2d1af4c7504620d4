package diagnostics

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveBarChart renders importances as a horizontal bar chart (highest gain
// at top, matching Compute's sort order) and writes it to path, sized
// width x height. Follows examples/iris_regression/main.go's plot.New /
// plotter.Add / Plot.Save sequence.
func SaveBarChart(importances []FeatureImportance, path string, width, height vg.Length) error {
	if err := validateNonEmpty(importances); err != nil {
		return err
	}

	values := make(plotter.Values, len(importances))
	labels := make([]string, len(importances))
	// Reverse so the highest-gain feature plots at the top of a horizontal
	// bar chart (gonum/plot draws category index 0 at the bottom).
	n := len(importances)
	for i, imp := range importances {
		values[n-1-i] = imp.Gain
		labels[n-1-i] = imp.Name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Feature importance (total split gain = %.4g)", TotalGain(importances))
	p.X.Label.Text = "Gain"
	p.Add(bars)
	p.NominalY(labels...)

	return p.Save(width, height, path)
}
