package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cellannotation/capval"
)

// Exit codes. Schema violations and run failures are reported
// differently so pipelines can tell an invalid file from a broken run.
const (
	exitValid   = 0
	exitInvalid = 1
	exitFailure = 2
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "capval",
	Short: "CAP upload validator for AnnData files",
	Long: `capval checks annotated expression matrix files (.h5ad) against the
Cell Annotation Platform upload schema.

A run reports every violation it can find, not just the first:
  - raw counts must be non-negative integers
  - a two-dimensional embedding must be present
  - required obs columns and uns keys must exist with non-blank values
  - obs and var indices must be unique
  - gene identifiers must resolve against the organism's ENSEMBL catalog

Matrix access is chunked, so memory stays bounded regardless of file size.`,
	Version:       capval.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Exiting happens here, after every
// command-level defer (logger sync included) has run.
func Execute() {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSchemaInvalid) {
		fmt.Fprintln(os.Stderr, "capval:", err)
	}
	if code := exitCode(err); code != exitValid {
		os.Exit(code)
	}
}

// exitCode maps a command result onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitValid
	case errors.Is(err, errSchemaInvalid):
		return exitInvalid
	default:
		return exitFailure
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
