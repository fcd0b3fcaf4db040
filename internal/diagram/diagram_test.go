package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexiusacademia/vivrisk/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGaugeData(t *testing.T) {
	g := NewGaugeData(25)
	assert.Equal(t, risk.High, g.Tier)
	assert.InDelta(t, 0.9, g.Score, 1e-12)
}

func TestDrawRiskGauge(t *testing.T) {
	tests := []struct {
		name      string
		amplitude float64
		marker    int
	}{
		{name: "low", amplitude: 0.5, marker: 12},
		{name: "medium", amplitude: 5.5, marker: 30},
		{name: "saturated", amplitude: 100, marker: gaugeWidth - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := DrawRiskGauge(NewGaugeData(tt.amplitude))
			lines := strings.Split(out, "\n")

			var markerLine string
			for _, l := range lines {
				if strings.HasSuffix(l, "▲") {
					markerLine = l
				}
			}
			require.NotEmpty(t, markerLine)
			assert.Equal(t, 7+tt.marker, strings.Index(markerLine, "▲"))
			assert.Contains(t, out, "score = ")
		})
	}
}

func TestDrawAmplitudeScale(t *testing.T) {
	out := DrawAmplitudeScale(NewGaugeData(120))
	assert.Contains(t, out, "»")
	assert.Contains(t, out, "120.00 cm")
	assert.Contains(t, out, "40.00 cm")

	out = DrawAmplitudeScale(NewGaugeData(4))
	assert.NotContains(t, out, "»")
}

func TestDrawScoreCurve(t *testing.T) {
	out := DrawScoreCurve(NewGaugeData(4.5))
	assert.Contains(t, out, "SCORE CURVE")
	assert.Contains(t, out, "A = 4.50 cm")
	assert.Contains(t, out, "1.00")
}

func TestDrawSummaryBox(t *testing.T) {
	out := DrawSummaryBox("RISK ASSESSMENT", []string{"Tier: 高风险", "Score: 0.900"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)

	width := cellWidth.StringWidth(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, cellWidth.StringWidth(l), l)
	}
}

func TestExportRiskCurve(t *testing.T) {
	points := []GaugeData{NewGaugeData(0.5), NewGaugeData(6), NewGaugeData(55)}

	tests := []struct {
		name     string
		filename string
		written  string
	}{
		{name: "png", filename: "curve.png", written: "curve.png"},
		{name: "svg in a new directory", filename: filepath.Join("plots", "curve.svg"), written: filepath.Join("plots", "curve.svg")},
		{name: "unknown extension falls back to png", filename: "curve", written: "curve.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			got, err := ExportRiskCurve(points, filepath.Join(dir, tt.filename))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.written), got)

			info, err := os.Stat(got)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}
