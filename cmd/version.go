package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/alexiusacademia/vivrisk/internal/version"
	"github.com/spf13/cobra"
)

// versionInfo is the machine-readable form of the version command
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vivrisk",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildTime: version.BuildTime,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		return render(cmd, info, func(w io.Writer) {
			fmt.Fprintln(w, version.String())
			fmt.Fprintln(w, "Bridge Vortex-Induced Vibration Risk Tool")
			fmt.Fprintf(w, "Built with %s for %s\n", info.GoVersion, info.Platform)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
