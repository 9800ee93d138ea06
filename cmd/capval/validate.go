package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/config"
	"github.com/cellannotation/capval/engine"

	_ "github.com/cellannotation/capval/anndata/h5"
)

// errSchemaInvalid marks a run that completed but found violations. It
// surfaces as its own exit code after the command's defers have run.
var errSchemaInvalid = errors.New("schema violations found")

var validateFlags struct {
	organism   string
	format     string
	chunkRows  int
	catalogDir string
	disabled   []string
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate .h5ad files against the upload schema",
	Long: `Validate one or more AnnData files against the CAP upload schema and
print every violation found.

Exit codes:
  0  all files are valid
  1  at least one file has schema violations
  2  a file could not be read or a gene catalog is unavailable

Examples:
  # Validate a single upload
  capval validate pbmc.h5ad

  # Force the organism instead of reading obs.organism
  capval validate --organism "Mus musculus" atlas.h5ad

  # Machine-readable output
  capval validate --format json upload.h5ad`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.organism, "organism", "", `force the organism: "Homo sapiens", "Mus musculus" or "Multi species"`)
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
	validateCmd.Flags().IntVar(&validateFlags.chunkRows, "chunk-rows", 0, "matrix rows read per block (overrides config)")
	validateCmd.Flags().StringVar(&validateFlags.catalogDir, "catalog-dir", "", "directory with gene map CSV files (overrides the embedded catalogs)")
	validateCmd.Flags().StringSliceVar(&validateFlags.disabled, "disable", nil, "rule names to skip")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := append(cfg.Options(),
		capval.WithLogger(log),
		capval.WithMetrics(capval.NewMetrics()))
	if validateFlags.organism != "" {
		opts = append(opts, capval.WithOrganismOverride(validateFlags.organism))
	}
	if validateFlags.chunkRows > 0 {
		opts = append(opts, capval.WithChunkRows(validateFlags.chunkRows))
	}
	if validateFlags.catalogDir != "" {
		opts = append(opts, capval.WithCatalogDir(validateFlags.catalogDir))
	}
	if len(validateFlags.disabled) > 0 {
		opts = append(opts, capval.WithDisabledRules(validateFlags.disabled...))
	}

	v := engine.New(opts...)

	reports, err := v.ValidateBatch(cmd.Context(), args)
	if err != nil {
		return err
	}

	allValid := true
	for _, report := range reports {
		if err := printReport(report); err != nil {
			return err
		}
		if !report.IsValid() {
			allValid = false
		}
	}

	if !allValid {
		return errSchemaInvalid
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.Load(cfgFile)
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if verbose {
		cfg.LogLevel = "debug"
	}
	if cfgFile == "" && !verbose {
		return zap.NewNop(), nil
	}
	return cfg.BuildLogger()
}

func printReport(report *capval.Report) error {
	if validateFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if report.IsValid() && report.Len() == 0 {
		fmt.Printf("%s: valid\n", report.Source)
		return nil
	}

	status := "valid"
	if !report.IsValid() {
		status = "invalid"
	}
	fmt.Printf("%s: %s (%d errors, %d warnings)\n",
		report.Source, status, report.ErrorCount(), report.WarningCount())
	for _, v := range report.Violations() {
		if v.Location != "" {
			fmt.Printf("  [%s] %s: %s (at %s)\n", v.Severity, v.Rule, v.Message, v.Location)
			continue
		}
		fmt.Printf("  [%s] %s: %s\n", v.Severity, v.Rule, v.Message)
	}
	return nil
}
