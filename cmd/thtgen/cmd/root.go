package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose bool
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "thtgen",
	Short: "thtgen - manufacturing CSV generation from assembly exports",
	Long: `thtgen converts electronics-assembly export files into the CSV
files consumed by pick-and-place and test equipment:
  - a placement ("BOM") export yields per-side placement files
  - an optional PINS export yields per-side pad-level files

Examples:
  thtgen generate --bom board.bom --client ACME --program X100
  thtgen generate --bom board.bom --pins board.pins --program X100 --inch
  thtgen inspect --bom board.bom`,
	Version: "1.2.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.config/thtgen/config.toml)")
}

// newLogger builds the debug logger: development output under
// --verbose, silent otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}
