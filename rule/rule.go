// Package rule defines the upload schema as an ordered collection of
// independent validation rules.
//
// Each rule is a pure check: it receives a read-only file view and the
// reference catalogs and returns zero or more violations. Rules never
// mutate the file or any shared state, never depend on other rules, and
// express expected malformed input as returned violations, not errors.
// The registry order is the schema's execution order; within one rule,
// violations are emitted in the natural iteration order of the checked
// axis (rows, then columns) for reproducibility.
package rule

import (
	"context"
	"strings"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// Rule is a single independent upload requirement.
//
// Implementations must be stateless and reentrant: the same rule value is
// shared across concurrent validation runs.
type Rule interface {
	// Name returns the unique rule identifier.
	Name() string

	// Description returns a human-readable summary of the requirement.
	Description() string

	// Severity is the severity of the violations this rule emits.
	Severity() capval.Severity

	// Check validates one aspect of the file and returns its violations.
	Check(ctx context.Context, view *anndata.FileView, catalogs catalog.Set) []capval.Violation
}

// RuleFunc adapts a function to the Rule interface. Useful for simple
// rules that don't need a full struct.
type RuleFunc struct {
	name        string
	description string
	severity    capval.Severity
	fn          func(ctx context.Context, view *anndata.FileView, catalogs catalog.Set) []capval.Violation
}

// NewRuleFunc creates a Rule from a function.
func NewRuleFunc(name, description string, severity capval.Severity,
	fn func(ctx context.Context, view *anndata.FileView, catalogs catalog.Set) []capval.Violation) Rule {
	return &RuleFunc{name: name, description: description, severity: severity, fn: fn}
}

// Name returns the rule name.
func (r *RuleFunc) Name() string { return r.name }

// Description returns the rule description.
func (r *RuleFunc) Description() string { return r.description }

// Severity returns the rule severity.
func (r *RuleFunc) Severity() capval.Severity { return r.severity }

// Check calls the wrapped function.
func (r *RuleFunc) Check(ctx context.Context, view *anndata.FileView, catalogs catalog.Set) []capval.Violation {
	return r.fn(ctx, view, catalogs)
}

// isBlank reports whether a value is empty or whitespace-only. Blank
// values in required columns count as missing.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
