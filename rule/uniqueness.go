package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// UniqueObsIndexRule checks that row (observation) labels are unique.
type UniqueObsIndexRule struct{}

// NewUniqueObsIndexRule creates the unique-obs-index rule.
func NewUniqueObsIndexRule() *UniqueObsIndexRule {
	return &UniqueObsIndexRule{}
}

// Name returns the rule name.
func (r *UniqueObsIndexRule) Name() string { return "unique-obs-index" }

// Description returns the rule description.
func (r *UniqueObsIndexRule) Description() string {
	return "observation index values must be unique"
}

// Severity returns the rule severity.
func (r *UniqueObsIndexRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *UniqueObsIndexRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	obs, err := view.Obs()
	if err != nil {
		return nil // missing obs is the required-obs-columns rule's finding
	}
	return checkUnique(r.Name(), "obs", obs.Index, func(s string) string { return s })
}

// UniqueVarIndexRule checks that feature (gene) labels are unique after
// stripping ENSEMBL version suffixes.
type UniqueVarIndexRule struct{}

// NewUniqueVarIndexRule creates the unique-var-index rule.
func NewUniqueVarIndexRule() *UniqueVarIndexRule {
	return &UniqueVarIndexRule{}
}

// Name returns the rule name.
func (r *UniqueVarIndexRule) Name() string { return "unique-var-index" }

// Description returns the rule description.
func (r *UniqueVarIndexRule) Description() string {
	return "feature index values must be unique after gene version stripping"
}

// Severity returns the rule severity.
func (r *UniqueVarIndexRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *UniqueVarIndexRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	varTable, err := view.Var()
	if err != nil {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message("feature annotation table (var) is missing").
				At("var").
				Build(),
		}
	}
	return checkUnique(r.Name(), "var", varTable.Index, catalog.StripVersion)
}

// checkUnique emits one violation per duplicated value, at the first
// repeated occurrence, in axis order.
func checkUnique(rule, axis string, index []string, normalize func(string) string) []capval.Violation {
	var violations []capval.Violation
	seen := make(map[string]bool, len(index))
	reported := make(map[string]bool)

	for i, raw := range index {
		v := normalize(raw)
		if seen[v] && !reported[v] {
			violations = append(violations, capval.ErrorViolation(rule).
				Message(fmt.Sprintf("duplicate %s index value %q", axis, v)).
				At(fmt.Sprintf("%s.index[%d]", axis, i)).
				Build())
			reported[v] = true
		}
		seen[v] = true
	}
	return violations
}
