package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/vivrisk/internal/config"
	"github.com/alexiusacademia/vivrisk/internal/version"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	cfgFile      string
	logLevel     string
	outputFormat string

	// cfg is loaded before every command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vivrisk",
	Short: "Bridge Vortex-Induced Vibration Risk Tool",
	Long: `vivrisk - Bridge Vortex-Induced Vibration Risk Assessment

A CLI tool that prepares bridge survey data and estimates the
vortex-induced vibration (VIV) amplitude and risk tier of a bridge
from its structural and aerodynamic parameters.

This tool helps bridge engineers perform:
  - Data cleaning (median and mode imputation, de-duplication)
  - Feature engineering, standardization and train/test splitting
  - Neural network topology inspection (single-task and multi-task)
  - Amplitude-based risk tiering with mitigation recommendations

Risk tiers: low (< 1 cm), medium (1 to 10 cm), high (≥ 10 cm).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintf(out, "  ║   vivrisk v%-47s║\n", version.Version)
		fmt.Fprintln(out, "  ║   Bridge Vortex-Induced Vibration Risk Assessment         ║")
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintln(out, "  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Features:")
		fmt.Fprintln(out, "    • Load CSV and Excel bridge surveys")
		fmt.Fprintln(out, "    • Clean, engineer, standardize and split feature data")
		fmt.Fprintln(out, "    • Single-task and multi-task network topologies")
		fmt.Fprintln(out, "    • Risk tiering and recommendations from VIV amplitude")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Use 'vivrisk --help' to see available commands.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ─────────────────────────────────────────────────────────────")
		fmt.Fprintf(out, "  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Fprintln(out)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./vivrisk.yaml or $HOME/.vivrisk/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "disabled", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "text", "output format (text, json, yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load()

	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists("vivrisk.yaml"):
		viper.SetConfigFile("vivrisk.yaml")
	default:
		if home, err := os.UserHomeDir(); err == nil {
			viper.SetConfigFile(filepath.Join(home, ".vivrisk", "config.yaml"))
		}
	}

	viper.SetEnvPrefix("VIVRISK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setup validates configuration and configures the global logger
func setup(cmd *cobra.Command) error {
	// a file named on the command line must exist
	if cfgFile != "" && !fileExists(cfgFile) {
		return fmt.Errorf("config file %s not found", cfgFile)
	}

	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded
	initLogging(cmd)
	return nil
}

// initLogging configures the global logger
func initLogging(cmd *cobra.Command) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
}
