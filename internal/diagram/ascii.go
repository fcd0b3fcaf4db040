package diagram

import (
	"fmt"
	"strings"

	"github.com/alexiusacademia/vivrisk/internal/risk"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-runewidth"
)

// GaugeData holds one assessed amplitude for drawing
type GaugeData struct {
	Amplitude float64 // cm
	Score     float64 // 0.1 to 1.0
	Tier      risk.Tier
}

// NewGaugeData classifies amplitude and returns the drawing data
func NewGaugeData(amplitude float64) GaugeData {
	tier, score := risk.Classify(amplitude)
	return GaugeData{Amplitude: amplitude, Score: score, Tier: tier}
}

const gaugeWidth = 50

// DrawRiskGauge renders the score on a 0 to 1 scale split into tier bands
func DrawRiskGauge(data GaugeData) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("  RISK SCORE\n")
	sb.WriteString("  ──────────\n\n")

	_, hiLow := risk.ScoreBand(risk.Low)
	_, hiMedium := risk.ScoreBand(risk.Medium)
	cells := make([]string, gaugeWidth)
	for i := range cells {
		pos := (float64(i) + 0.5) / gaugeWidth
		switch {
		case pos < hiLow:
			cells[i] = "░"
		case pos < hiMedium:
			cells[i] = "▒"
		default:
			cells[i] = "▓"
		}
	}

	marker := markerPos(data.Score)
	sb.WriteString(fmt.Sprintf("  0.0 ┤%s├ 1.0\n", strings.Join(cells, "")))
	sb.WriteString(fmt.Sprintf("       %s▲\n", strings.Repeat(" ", marker)))
	sb.WriteString(fmt.Sprintf("       %sscore = %.3f\n", strings.Repeat(" ", marker), data.Score))
	sb.WriteString("\n")
	sb.WriteString("  ░ low (< 1 cm)   ▒ medium (1 to 10 cm)   ▓ high (≥ 10 cm)\n")

	return sb.String()
}

func markerPos(score float64) int {
	pos := int(score * gaugeWidth)
	if pos < 0 {
		return 0
	}
	if pos >= gaugeWidth {
		return gaugeWidth - 1
	}
	return pos
}

// DrawAmplitudeScale renders amplitude against the tier thresholds
func DrawAmplitudeScale(data GaugeData) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("  AMPLITUDE vs THRESHOLDS\n")
	sb.WriteString("  ───────────────────────\n\n")

	// bars are scaled so the saturation threshold fills the width
	scale := float64(gaugeWidth) / risk.HighThreshold
	rows := []struct {
		label string
		value float64
		fill  string
	}{
		{"low", risk.LowThreshold, "─"},
		{"medium", risk.MediumThreshold, "─"},
		{"high", risk.HighThreshold, "─"},
		{"A", data.Amplitude, "█"},
	}

	for _, r := range rows {
		bar := int(r.value * scale)
		if bar < 0 {
			bar = 0
		}
		overflow := ""
		if bar > gaugeWidth {
			bar = gaugeWidth
			overflow = "»"
		}
		sb.WriteString(fmt.Sprintf("  %-7s│%s%s %.2f cm\n", r.label, strings.Repeat(r.fill, bar), overflow, r.value))
	}

	return sb.String()
}

// DrawScoreCurve charts the score over 0 to 50 cm in half-centimetre steps
// and reports where the assessed amplitude falls on it
func DrawScoreCurve(data GaugeData) string {
	const step = 0.5
	scores := make([]float64, 0, 101)
	for a := 0.0; a <= risk.HighThreshold*1.25; a += step {
		_, score := risk.Classify(a)
		scores = append(scores, score)
	}

	graph := asciigraph.Plot(scores,
		asciigraph.Height(10),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("score vs amplitude (x: %.1f cm per column), A = %.2f cm → %.3f", step, data.Amplitude, data.Score)),
	)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  SCORE CURVE\n")
	sb.WriteString("  ───────────\n\n")
	sb.WriteString(graph)
	sb.WriteString("\n")
	return sb.String()
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	width := cellWidth.StringWidth(title)
	for _, line := range lines {
		if n := cellWidth.StringWidth(line); n > width {
			width = n
		}
	}
	width += 4

	border := strings.Repeat("═", width)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title, width-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line, width-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// cellWidth measures terminal columns: CJK text takes two, box drawing one
var cellWidth = &runewidth.Condition{EastAsianWidth: false}

func pad(s string, width int) string {
	n := cellWidth.StringWidth(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
