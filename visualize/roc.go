// Package visualize renders evaluation artifacts to image files.
package visualize

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/manufacturingnet/mlgo/metrics"
	"github.com/manufacturingnet/mlgo/pkg/errors"
)

// SaveROCCurve renders ROC operating points as a curve with the chance
// diagonal and writes the plot to path. The output format follows the path
// extension (.png, .svg, .pdf).
func SaveROCCurve(points []metrics.ROCPoint, title, path string) error {
	if len(points) == 0 {
		return errors.NewValueError("SaveROCCurve", "no ROC points to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.FPR
		xys[i].Y = pt.TPR
	}

	curve, err := plotter.NewLine(xys)
	if err != nil {
		return errors.Wrap(err, "SaveROCCurve: build curve")
	}
	curve.LineStyle.Width = vg.Points(1.5)
	curve.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	chance, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "SaveROCCurve: build diagonal")
	}
	chance.LineStyle.Color = color.Gray{Y: 128}
	chance.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, chance)
	p.Legend.Add("model", curve)
	p.Legend.Add("chance", chance)
	p.Legend.Top = false

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrap(err, "SaveROCCurve: save plot")
	}
	return nil
}
