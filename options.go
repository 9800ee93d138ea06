package capval

import (
	"go.uber.org/zap"
)

// Option configures the validation engine.
type Option func(*Options)

// Options holds all configuration for a validation run.
type Options struct {
	// ChunkRows is the number of matrix rows read per chunk during
	// streamed scans. Peak memory scales with this, not with file size.
	ChunkRows int

	// CountCheckRows is how many leading matrix rows are inspected by the
	// count-matrix rule. Matches the original upload pipeline's bound.
	CountCheckRows int

	// RequiredObsColumns are the row-annotation columns every upload must
	// carry, with non-blank values in every row.
	RequiredObsColumns []string

	// RequiredUnsKeys are the mandatory unstructured metadata keys.
	RequiredUnsKeys []string

	// CatalogDir overrides the embedded gene catalogs with CSV gene maps
	// from a directory. Empty means use the embedded defaults.
	CatalogDir string

	// OrganismOverride forces the organism instead of reading it from the
	// obs organism column. Empty means derive from the file.
	OrganismOverride string

	// DisabledRules lists rule names to skip. Disabling a rule changes
	// the schema, not the engine.
	DisabledRules []string

	// Logger receives structured debug/progress logs. Nil means no logging.
	Logger *zap.Logger

	// Metrics collects run statistics. Nil means no collection.
	Metrics *Metrics
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		ChunkRows:          1000,
		CountCheckRows:     100,
		RequiredObsColumns: []string{"assay", "disease", "organism", "tissue"},
		RequiredUnsKeys:    []string{"title"},
		Logger:             zap.NewNop(),
	}
}

// WithChunkRows sets the matrix chunk size in rows.
func WithChunkRows(rows int) Option {
	return func(o *Options) {
		if rows > 0 {
			o.ChunkRows = rows
		}
	}
}

// WithCountCheckRows sets how many leading rows the count-matrix rule reads.
func WithCountCheckRows(rows int) Option {
	return func(o *Options) {
		if rows > 0 {
			o.CountCheckRows = rows
		}
	}
}

// WithRequiredObsColumns overrides the mandatory row-annotation columns.
func WithRequiredObsColumns(columns ...string) Option {
	return func(o *Options) {
		o.RequiredObsColumns = columns
	}
}

// WithRequiredUnsKeys overrides the mandatory unstructured metadata keys.
func WithRequiredUnsKeys(keys ...string) Option {
	return func(o *Options) {
		o.RequiredUnsKeys = keys
	}
}

// WithCatalogDir loads gene catalogs from CSV gene maps in dir instead of
// the embedded defaults.
func WithCatalogDir(dir string) Option {
	return func(o *Options) {
		o.CatalogDir = dir
	}
}

// WithOrganismOverride forces the organism for the gene-identifier rule.
func WithOrganismOverride(organism string) Option {
	return func(o *Options) {
		o.OrganismOverride = organism
	}
}

// WithDisabledRules skips the named rules.
func WithDisabledRules(names ...string) Option {
	return func(o *Options) {
		o.DisabledRules = names
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// RuleDisabled reports whether the named rule is in DisabledRules.
func (o *Options) RuleDisabled(name string) bool {
	for _, n := range o.DisabledRules {
		if n == name {
			return true
		}
	}
	return false
}
