package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// printYAML outputs data as YAML
func printYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return encoder.Close()
}

// render writes data in the configured format, calling text for the default one
func render(cmd *cobra.Command, data interface{}, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	switch strings.ToLower(cfg.Output) {
	case "json":
		return printJSON(w, data)
	case "yaml":
		return printYAML(w, data)
	default:
		text(w)
		return nil
	}
}

const rule = "───────────────────────────────────────────────────────────────"

// printBanner writes a section heading between double rules
func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("═", 63))
	fmt.Fprintf(w, "     %s\n", title)
	fmt.Fprintln(w, strings.Repeat("═", 63))
	fmt.Fprintln(w)
}

// printHeading writes a subsection heading with a single rule
func printHeading(w io.Writer, title string) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintln(w, rule)
}
