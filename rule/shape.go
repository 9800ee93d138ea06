package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// ShapeConsistencyRule checks that annotation tables and embeddings agree
// with the matrix dimensions: obs has n_obs rows, var has n_var rows, and
// every obsm embedding has n_obs rows.
type ShapeConsistencyRule struct{}

// NewShapeConsistencyRule creates the shape-consistency rule.
func NewShapeConsistencyRule() *ShapeConsistencyRule {
	return &ShapeConsistencyRule{}
}

// Name returns the rule name.
func (r *ShapeConsistencyRule) Name() string { return "shape-consistency" }

// Description returns the rule description.
func (r *ShapeConsistencyRule) Description() string {
	return "annotation tables and embeddings must match the matrix dimensions"
}

// Severity returns the rule severity.
func (r *ShapeConsistencyRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *ShapeConsistencyRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	nObs, nVar := view.Shape()
	var violations []capval.Violation

	if obs, err := view.Obs(); err == nil && obs.NRows() != nObs {
		violations = append(violations, capval.ErrorViolation(r.Name()).
			Message(fmt.Sprintf("obs has %d rows but the matrix has %d observations", obs.NRows(), nObs)).
			At("obs").
			Build())
	}

	if varTable, err := view.Var(); err == nil && varTable.NRows() != nVar {
		violations = append(violations, capval.ErrorViolation(r.Name()).
			Message(fmt.Sprintf("var has %d rows but the matrix has %d features", varTable.NRows(), nVar)).
			At("var").
			Build())
	}

	if specs, err := view.Embeddings(); err == nil {
		for _, spec := range specs {
			if spec.Rows != nObs {
				violations = append(violations, capval.ErrorViolation(r.Name()).
					Message(fmt.Sprintf("embedding %q has %d rows but the matrix has %d observations", spec.Name, spec.Rows, nObs)).
					At("obsm."+spec.Name).
					Build())
			}
		}
	}

	return violations
}
