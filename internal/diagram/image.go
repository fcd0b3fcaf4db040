package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/alexiusacademia/vivrisk/internal/risk"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// curveSamples is the number of points along the score curve
const curveSamples = 200

// ExportRiskCurve plots the amplitude-to-score mapping with the tier thresholds
// and marks each assessed amplitude on it. The format follows the file
// extension (.png, .svg, .pdf); anything else is saved as png.
func ExportRiskCurve(points []GaugeData, filename string) (string, error) {
	p := plot.New()
	p.Title.Text = "Vortex-Induced Vibration Risk"
	p.X.Label.Text = "Amplitude (cm)"
	p.Y.Label.Text = "Risk score"
	p.Y.Min = 0
	p.Y.Max = 1.05

	xMax := risk.HighThreshold * 1.25
	for _, pt := range points {
		if pt.Amplitude*1.1 > xMax {
			xMax = pt.Amplitude * 1.1
		}
	}
	p.X.Min = 0
	p.X.Max = xMax

	// Tier bands as shaded polygons
	bands := []struct {
		from, to float64
		tint     color.RGBA
	}{
		{0, risk.LowThreshold, color.RGBA{R: 144, G: 238, B: 144, A: 90}},
		{risk.LowThreshold, risk.MediumThreshold, color.RGBA{R: 255, G: 215, B: 0, A: 90}},
		{risk.MediumThreshold, xMax, color.RGBA{R: 240, G: 128, B: 128, A: 90}},
	}
	for _, b := range bands {
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: b.from, Y: 0},
			{X: b.to, Y: 0},
			{X: b.to, Y: 1.05},
			{X: b.from, Y: 1.05},
		})
		if err != nil {
			return "", err
		}
		band.Color = b.tint
		band.LineStyle.Width = 0
		p.Add(band)
	}

	// Score curve
	curve := make(plotter.XYs, curveSamples+1)
	for i := range curve {
		a := xMax * float64(i) / curveSamples
		_, score := risk.Classify(a)
		curve[i] = plotter.XY{X: a, Y: score}
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return "", err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	p.Add(line)
	p.Legend.Add("score", line)

	// Threshold markers
	for _, th := range []float64{risk.LowThreshold, risk.MediumThreshold, risk.HighThreshold} {
		marker, err := plotter.NewLine(plotter.XYs{{X: th, Y: 0}, {X: th, Y: 1.05}})
		if err != nil {
			return "", err
		}
		marker.LineStyle.Width = vg.Points(1)
		marker.LineStyle.Color = color.Gray{Y: 96}
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(marker)

		lbl, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: th, Y: 1.0}},
			Labels: []string{fmt.Sprintf("%g cm", th)},
		})
		if err != nil {
			return "", err
		}
		p.Add(lbl)
	}

	// Assessed amplitudes
	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i] = plotter.XY{X: pt.Amplitude, Y: pt.Score}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return "", err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 220, G: 20, B: 60, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("assessed", scatter)
	}
	p.Legend.Top = false
	p.Legend.Left = false

	width := 8 * vg.Inch
	height := 5 * vg.Inch

	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
	default:
		filename += ".png"
	}
	if err := p.Save(width, height, filename); err != nil {
		return "", err
	}
	return filename, nil
}
