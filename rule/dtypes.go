package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// FieldDtypesRule checks that declared element types are compatible with
// the schema: axis indices and required obs columns must be string-typed
// or categorical, matrix sections must be numeric.
type FieldDtypesRule struct {
	obsColumns []string
}

// NewFieldDtypesRule creates the field-dtypes rule. obsColumns are the
// required row-annotation columns whose dtypes are checked when present.
func NewFieldDtypesRule(obsColumns []string) *FieldDtypesRule {
	return &FieldDtypesRule{obsColumns: obsColumns}
}

// Name returns the rule name.
func (r *FieldDtypesRule) Name() string { return "field-dtypes" }

// Description returns the rule description.
func (r *FieldDtypesRule) Description() string {
	return "declared element types must match the schema: string indices, string or categorical annotation columns, numeric matrix"
}

// Severity returns the rule severity.
func (r *FieldDtypesRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *FieldDtypesRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	var violations []capval.Violation

	if obs, err := view.Obs(); err == nil {
		if !obs.IndexDtype.StringLike() {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("obs index must be string-typed, found %s", obs.IndexDtype)).
				At("obs.index").
				Build())
		}
		for _, name := range r.obsColumns {
			col, ok := obs.Column(name)
			if !ok {
				continue // absence is the required-obs-columns rule's finding
			}
			if !col.Dtype.StringLike() {
				violations = append(violations, capval.ErrorViolation(r.Name()).
					Message(fmt.Sprintf("obs column %q must be string or categorical, found %s", name, col.Dtype)).
					At("obs."+name).
					Build())
			}
		}
	}

	if varTable, err := view.Var(); err == nil {
		if !varTable.IndexDtype.StringLike() {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("var index must hold string gene identifiers, found %s", varTable.IndexDtype)).
				At("var.index").
				Build())
		}
	}

	for _, section := range []string{anndata.MatrixX, anndata.MatrixRawX} {
		if !view.HasMatrix(section) {
			continue
		}
		if dt, ok := view.Dtypes()[section]; ok && !dt.Numeric() {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("matrix %s must be numeric, found %s", section, dt)).
				At(section).
				Build())
		}
	}

	return violations
}
