// Package report renders evaluation results for the command line.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/houseprice/metrics"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// PrintMetrics writes the R² and RMSE lines.
func PrintMetrics(w io.Writer, m metrics.RegressionMetrics) error {
	_, err := fmt.Fprintf(w, "RSquared Score: %.2f\nRoot Mean Squared Error: %.2f\n", m.R2, m.RMSE)
	return err
}

// PrintPrediction writes a prediction next to its reference value.
func PrintPrediction(w io.Writer, predicted, actual float64) error {
	_, err := fmt.Fprintf(w, "Predicted value: %.4f, actual value: %.1f\n", predicted, actual)
	return err
}

// PrintFeatureImportance writes one "name: share" line per feature, most
// important first. Ties keep feature order.
func PrintFeatureImportance(w io.Writer, names []string, importance []float64) error {
	if len(names) != len(importance) {
		return errors.NewDimensionError("report.PrintFeatureImportance", len(names), len(importance), 0)
	}
	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return importance[order[a]] > importance[order[b]]
	})
	for _, i := range order {
		if _, err := fmt.Fprintf(w, "%s: %.4f\n", names[i], importance[i]); err != nil {
			return err
		}
	}
	return nil
}

// PlotPredictions saves a predicted-versus-actual scatter plot with the
// identity line. The image format follows the file extension.
func PlotPredictions(path string, actual, predicted []float64) error {
	if len(actual) == 0 {
		return errors.NewInsufficientDataError("report.PlotPredictions", 1, 0)
	}
	if len(actual) != len(predicted) {
		return errors.NewDimensionError("report.PlotPredictions", len(actual), len(predicted), 0)
	}

	p := plot.New()
	p.Title.Text = "Predicted vs actual median house value"
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	pts := make(plotter.XYs, len(actual))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
		lo = math.Min(lo, math.Min(actual[i], predicted[i]))
		hi = math.Max(hi, math.Max(actual[i], predicted[i]))
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "scatter")
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(1.5)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "identity line")
	}
	identity.LineStyle.Width = vg.Points(1)
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(plotter.NewGrid(), s, identity)
	p.Legend.Add("test samples", s)
	p.Legend.Add("y = x", identity)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
