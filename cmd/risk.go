package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/vivrisk/internal/diagram"
	"github.com/alexiusacademia/vivrisk/internal/risk"
	"github.com/spf13/cobra"
)

var (
	riskAmplitude   float64
	riskShowDiagram bool
	riskExport      string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Classify a known vortex-induced vibration amplitude",
	Long: `Map a vortex-induced vibration amplitude (cm) to a risk tier and a
continuous risk score, and list the recommended actions.

Scoring:
  A < 1 cm          low     0.1 + 0.3·A
  1 ≤ A < 10 cm     medium  0.4 + 0.4·(A - 1)/9
  A ≥ 10 cm         high    0.8 + 0.2·min(1, (A - 10)/30)

Examples:
  vivrisk risk --amplitude 4.5
  vivrisk risk -a 25 --diagram
  vivrisk risk -a 25 -x diagrams/risk_curve.png`,
	RunE: runRisk,
}

func init() {
	rootCmd.AddCommand(riskCmd)

	riskCmd.Flags().Float64VarP(&riskAmplitude, "amplitude", "a", 0, "Vibration amplitude (cm) [required]")
	riskCmd.Flags().BoolVarP(&riskShowDiagram, "diagram", "d", false, "Show ASCII risk gauge")
	riskCmd.Flags().StringVarP(&riskExport, "export", "x", "", "Export the risk curve to an image (.png, .svg, .pdf)")

	riskCmd.MarkFlagRequired("amplitude")
}

func runRisk(cmd *cobra.Command, args []string) error {
	report, err := risk.NewReport(risk.Assess([]float64{riskAmplitude}), nil)
	if err != nil {
		return err
	}

	if err := render(cmd, report, func(w io.Writer) { printReport(w, report) }); err != nil {
		return err
	}

	if riskShowDiagram && strings.EqualFold(cfg.Output, "text") {
		g := diagram.NewGaugeData(riskAmplitude)
		fmt.Fprint(cmd.OutOrStdout(), diagram.DrawRiskGauge(g))
		fmt.Fprint(cmd.OutOrStdout(), diagram.DrawAmplitudeScale(g))
		fmt.Fprint(cmd.OutOrStdout(), diagram.DrawScoreCurve(g))
		fmt.Fprintln(cmd.OutOrStdout())
	}

	return exportCurve(cmd, riskExport, []float64{riskAmplitude})
}

// exportCurve writes the risk curve with the given amplitudes marked, if a path is set
func exportCurve(cmd *cobra.Command, path string, amplitudes []float64) error {
	if path == "" {
		return nil
	}
	points := make([]diagram.GaugeData, len(amplitudes))
	for i, a := range amplitudes {
		points[i] = diagram.NewGaugeData(a)
	}
	written, err := diagram.ExportRiskCurve(points, path)
	if err != nil {
		return fmt.Errorf("export diagram: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "  ✓ Risk curve exported to: %s\n", written)
	return nil
}

// printReport writes a risk report in the text format
func printReport(w io.Writer, r *risk.Report) {
	printBanner(w, "VORTEX-INDUCED VIBRATION RISK ASSESSMENT")

	if r.Bridge != nil {
		printHeading(w, "BRIDGE")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if r.Bridge.Name != "" {
			fmt.Fprintf(tw, "  Name:\t%s\n", r.Bridge.Name)
		}
		if r.Bridge.StructuralType != "" {
			fmt.Fprintf(tw, "  Structural type:\t%s\n", r.Bridge.StructuralType)
		}
		if r.Bridge.Span != 0 {
			fmt.Fprintf(tw, "  Span:\t%.1f m\n", r.Bridge.Span)
		}
		if r.Bridge.Length != 0 {
			fmt.Fprintf(tw, "  Length:\t%.1f m\n", r.Bridge.Length)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	printHeading(w, "RESULT")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Amplitude:\t%.3f cm\n", r.PredictedAmplitude)
	fmt.Fprintf(tw, "  Risk score:\t%.3f\n", r.RiskScore)
	fmt.Fprintf(tw, "  Risk tier:\t%s (%s)\n", r.Tier, r.RiskLevel)
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprint(w, diagram.DrawSummaryBox("RECOMMENDATIONS", numbered(r.Recommendations)))
	fmt.Fprintln(w)
}

func numbered(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%d. %s", i+1, l)
	}
	return out
}
