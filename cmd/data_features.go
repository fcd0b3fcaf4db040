package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/vivrisk/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	featuresFile         string
	featuresTestFraction float64
	featuresSeed         uint64
)

var dataFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "Engineer, standardize and split features",
	Long: `Run the full preparation pipeline on a bridge survey table:

  load → clean → engineer features → standardize → train/test split

Features are the base numeric columns present in the table, one indicator
per structural type (结构_<type>), a mitigation flag (有自证措施), the
span/length ratio (跨长比) and the second/first mode frequency ratio (频率比).

The split needs the amplitude column (振幅_cm); without it the split is
skipped and only the feature layout is reported.

Examples:
  vivrisk data features -f bridges.csv
  vivrisk data features -f bridges.csv --test-fraction 0.2 --seed 7`,
	RunE: runDataFeatures,
}

func init() {
	dataCmd.AddCommand(dataFeaturesCmd)

	dataFeaturesCmd.Flags().StringVarP(&featuresFile, "file", "f", "", "Input table (.csv or .xlsx) [required]")
	dataFeaturesCmd.Flags().Float64Var(&featuresTestFraction, "test-fraction", 0.25, "Share of rows held out for testing, in (0, 1)")
	dataFeaturesCmd.Flags().Uint64Var(&featuresSeed, "seed", 42, "Shuffle seed for the split")

	dataFeaturesCmd.MarkFlagRequired("file")
}

// featuresSummary is the result of the features command
type featuresSummary struct {
	File         string    `json:"file" yaml:"file"`
	Rows         int       `json:"rows" yaml:"rows"`
	Columns      []string  `json:"columns" yaml:"columns"`
	Mean         []float64 `json:"mean" yaml:"mean"`
	Std          []float64 `json:"std" yaml:"std"`
	Occurrence   []string  `json:"occurrence_classes,omitempty" yaml:"occurrence_classes,omitempty"`
	RiskLevels   []string  `json:"risk_classes,omitempty" yaml:"risk_classes,omitempty"`
	TestFraction float64   `json:"test_fraction" yaml:"test_fraction"`
	Seed         uint64    `json:"seed" yaml:"seed"`
	Split        bool      `json:"split" yaml:"split"`
	TrainRows    int       `json:"train_rows" yaml:"train_rows"`
	TestRows     int       `json:"test_rows" yaml:"test_rows"`
}

func runDataFeatures(cmd *cobra.Command, args []string) error {
	fraction := cfg.Data.TestFraction
	if cmd.Flags().Changed("test-fraction") {
		fraction = featuresTestFraction
	}
	seed := cfg.Data.Seed
	if cmd.Flags().Changed("seed") {
		seed = featuresSeed
	}

	p := pipeline.New(featuresFile, pipeline.Options{StrictRatios: cfg.Data.StrictRatios})
	if _, _, err := p.Load(); err != nil {
		return err
	}
	if _, _, err := p.Clean(); err != nil {
		return err
	}
	features, targets, err := p.EngineerFeatures()
	if err != nil {
		return err
	}
	if _, err := p.Normalize(); err != nil {
		return err
	}

	summary := featuresSummary{
		File:         featuresFile,
		Rows:         features.Rows(),
		Columns:      features.Columns,
		Mean:         p.Scaler().Mean,
		Std:          p.Scaler().Std,
		TestFraction: fraction,
		Seed:         seed,
	}

	if targets != nil {
		if targets.HasOccurrence() {
			summary.Occurrence, _ = targets.EncodeOccurrence()
		}
		if targets.HasRiskLevel() {
			summary.RiskLevels, _ = targets.EncodeRiskLevel()
		}

		split, err := p.Split(fraction, seed)
		if err != nil {
			return err
		}
		summary.Split = true
		summary.TrainRows = split.TrainFeatures.Rows()
		summary.TestRows = split.TestFeatures.Rows()
	}

	return render(cmd, summary, func(w io.Writer) { printFeaturesSummary(w, summary) })
}

func printFeaturesSummary(w io.Writer, s featuresSummary) {
	printBanner(w, "FEATURE ENGINEERING")

	printHeading(w, "FEATURE LAYOUT")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  #\tFeature\tMean\tStd\n")
	for i, name := range s.Columns {
		fmt.Fprintf(tw, "  %d\t%s\t%.4g\t%.4g\n", i+1, name, s.Mean[i], s.Std[i])
	}
	tw.Flush()
	fmt.Fprintln(w)

	printHeading(w, "TARGETS")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Amplitude (振幅_cm):\t%s\n", yesNo(s.Split))
	fmt.Fprintf(tw, "  Occurrence classes:\t%s\n", classList(s.Occurrence))
	fmt.Fprintf(tw, "  Risk level classes:\t%s\n", classList(s.RiskLevels))
	tw.Flush()
	fmt.Fprintln(w)

	printHeading(w, "SPLIT")
	if !s.Split {
		fmt.Fprintln(w, "  No amplitude column; split skipped")
		fmt.Fprintln(w)
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Rows:\t%d\n", s.Rows)
	fmt.Fprintf(tw, "  Test fraction:\t%.2f (seed %d)\n", s.TestFraction, s.Seed)
	fmt.Fprintf(tw, "  Train rows:\t%d\n", s.TrainRows)
	fmt.Fprintf(tw, "  Test rows:\t%d\n", s.TestRows)
	tw.Flush()
	fmt.Fprintln(w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func classList(classes []string) string {
	if len(classes) == 0 {
		return "n/a"
	}
	return strings.Join(classes, ", ")
}
