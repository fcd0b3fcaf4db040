package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/alexiusacademia/vivrisk/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cleanFile string
	cleanSave string
)

var dataCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean a bridge survey table",
	Long: `Load a bridge survey table and clean it:

  - Numeric columns: non-numeric cells become missing, then every missing
    cell is filled with the column median
  - Categorical columns: missing cells are filled with the most frequent
    value ("未知" when the column has no values at all)
  - Exact duplicate rows are dropped

Examples:
  # Clean and report
  vivrisk data clean -f bridges.csv

  # Clean and save the processed table
  vivrisk data clean -f bridges.xlsx -s processed/bridges_clean.csv`,
	RunE: runDataClean,
}

func init() {
	dataCmd.AddCommand(dataCleanCmd)

	dataCleanCmd.Flags().StringVarP(&cleanFile, "file", "f", "", "Input table (.csv or .xlsx) [required]")
	dataCleanCmd.Flags().StringVarP(&cleanSave, "save", "s", "", "Write the cleaned table to this path (.csv or .xlsx)")

	dataCleanCmd.MarkFlagRequired("file")
}

// cleanSummary is the result of the clean command
type cleanSummary struct {
	File        string              `json:"file" yaml:"file"`
	RawRows     int                 `json:"raw_rows" yaml:"raw_rows"`
	CleanedRows int                 `json:"cleaned_rows" yaml:"cleaned_rows"`
	Duplicates  int                 `json:"duplicates" yaml:"duplicates"`
	Missing     map[string]int      `json:"missing" yaml:"missing"`
	Fills       pipeline.FillValues `json:"fills" yaml:"fills"`
	SavedTo     string              `json:"saved_to,omitempty" yaml:"saved_to,omitempty"`
}

func runDataClean(cmd *cobra.Command, args []string) error {
	p := pipeline.New(cleanFile, pipeline.Options{StrictRatios: cfg.Data.StrictRatios})

	raw, rawRows, err := p.Load()
	if err != nil {
		return err
	}

	// Missing cells as loaded, before coercion
	missing := make(map[string]int)
	for _, name := range append(append([]string(nil), pipeline.NumericColumns...), pipeline.CategoricalColumns...) {
		if col := raw.Column(name); col != nil {
			if n := col.MissingCount(); n > 0 {
				missing[name] = n
			}
		}
	}

	_, cleanedRows, err := p.Clean()
	if err != nil {
		return err
	}

	summary := cleanSummary{
		File:        cleanFile,
		RawRows:     rawRows,
		CleanedRows: cleanedRows,
		Duplicates:  rawRows - cleanedRows,
		Missing:     missing,
		Fills:       p.FillValues(),
	}

	if cleanSave != "" {
		if err := p.SaveProcessed(cleanSave); err != nil {
			return err
		}
		summary.SavedTo = cleanSave
	}

	return render(cmd, summary, func(w io.Writer) { printCleanSummary(w, summary) })
}

func printCleanSummary(w io.Writer, s cleanSummary) {
	printBanner(w, "BRIDGE SURVEY DATA CLEANING")

	printHeading(w, "INPUT DATA")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  File:\t%s\n", s.File)
	fmt.Fprintf(tw, "  Rows loaded:\t%d\n", s.RawRows)
	fmt.Fprintf(tw, "  Rows after cleaning:\t%d\n", s.CleanedRows)
	fmt.Fprintf(tw, "  Duplicates dropped:\t%d\n", s.Duplicates)
	tw.Flush()
	fmt.Fprintln(w)

	printHeading(w, "NUMERIC FILLS (median)")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(s.Fills.Medians) {
		fmt.Fprintf(tw, "  %s:\t%.4g\t(%d missing)\n", name, s.Fills.Medians[name], s.Missing[name])
	}
	tw.Flush()
	fmt.Fprintln(w)

	printHeading(w, "CATEGORICAL FILLS (mode)")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(s.Fills.Modes) {
		fmt.Fprintf(tw, "  %s:\t%s\t(%d missing)\n", name, s.Fills.Modes[name], s.Missing[name])
	}
	tw.Flush()
	fmt.Fprintln(w)

	if s.SavedTo != "" {
		fmt.Fprintf(w, "  ✓ Cleaned table saved to %s\n\n", s.SavedTo)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
