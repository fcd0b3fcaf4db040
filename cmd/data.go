package cmd

import (
	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Bridge survey data preparation",
	Long: `Load, clean and engineer features from a bridge survey table.

Accepted formats: .csv (UTF-8) and .xlsx (first sheet).

Subcommands:
  clean     - Impute missing values, drop duplicates, optionally save
  features  - Build, standardize and split the feature matrix`,
}

func init() {
	rootCmd.AddCommand(dataCmd)
}
