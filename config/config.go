// Package config loads validator configuration from YAML files and maps
// it onto engine options.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/catalog"
	"github.com/cellannotation/capval/rule"
)

// Config is the root configuration structure.
type Config struct {
	// ChunkRows is the number of matrix rows read per block during
	// streamed scans. Peak memory scales with this value.
	// Default: 1000
	ChunkRows int `yaml:"chunk_rows"`

	// CountCheckRows is how many leading matrix rows the count-matrix
	// check inspects.
	// Default: 100
	CountCheckRows int `yaml:"count_check_rows"`

	// RequiredObsColumns are the mandatory row-annotation columns.
	// Default: assay, disease, organism, tissue
	RequiredObsColumns []string `yaml:"required_obs_columns"`

	// RequiredUnsKeys are the mandatory unstructured metadata keys.
	// Default: title
	RequiredUnsKeys []string `yaml:"required_uns_keys"`

	// CatalogDir overrides the embedded gene maps with CSV files from a
	// directory. Empty means use the embedded defaults.
	CatalogDir string `yaml:"catalog_dir"`

	// Organism forces the organism instead of reading it from the file.
	Organism string `yaml:"organism"`

	// DisabledRules lists checks to skip by name.
	DisabledRules []string `yaml:"disabled_rules"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := capval.DefaultOptions()
	return &Config{
		ChunkRows:          opts.ChunkRows,
		CountCheckRows:     opts.CountCheckRows,
		RequiredObsColumns: opts.RequiredObsColumns,
		RequiredUnsKeys:    opts.RequiredUnsKeys,
		LogLevel:           "info",
	}
}

// Load reads a YAML configuration file, layered over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot accept.
func (c *Config) Validate() error {
	if c.ChunkRows <= 0 {
		return fmt.Errorf("chunk_rows must be positive, got %d", c.ChunkRows)
	}
	if c.CountCheckRows <= 0 {
		return fmt.Errorf("count_check_rows must be positive, got %d", c.CountCheckRows)
	}
	if c.Organism != "" {
		if _, ok := catalog.Parse(c.Organism); !ok {
			return fmt.Errorf("organism: unsupported value %q", c.Organism)
		}
	}
	known := rule.Default(nil)
	for _, name := range c.DisabledRules {
		if _, ok := known.Get(name); !ok {
			return fmt.Errorf("disabled_rules: unknown rule %q", name)
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// Options maps the configuration onto engine options. The logger and
// metrics collector are wired by the caller.
func (c *Config) Options() []capval.Option {
	opts := []capval.Option{
		capval.WithChunkRows(c.ChunkRows),
		capval.WithCountCheckRows(c.CountCheckRows),
		capval.WithRequiredObsColumns(c.RequiredObsColumns...),
		capval.WithRequiredUnsKeys(c.RequiredUnsKeys...),
	}
	if c.CatalogDir != "" {
		opts = append(opts, capval.WithCatalogDir(c.CatalogDir))
	}
	if c.Organism != "" {
		opts = append(opts, capval.WithOrganismOverride(c.Organism))
	}
	if len(c.DisabledRules) > 0 {
		opts = append(opts, capval.WithDisabledRules(c.DisabledRules...))
	}
	return opts
}

// BuildLogger constructs a zap logger honoring the configured level.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level := zap.InfoLevel
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	return zc.Build()
}
