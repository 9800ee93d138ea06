package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// VarRawSubsetRule checks that, when the file carries a raw section, every
// var identifier also appears in raw.var. The raw section holds the
// unfiltered feature space, so the filtered var axis must be a subset.
type VarRawSubsetRule struct{}

// NewVarRawSubsetRule creates the var-raw-subset rule.
func NewVarRawSubsetRule() *VarRawSubsetRule {
	return &VarRawSubsetRule{}
}

// Name returns the rule name.
func (r *VarRawSubsetRule) Name() string { return "var-raw-subset" }

// Description returns the rule description.
func (r *VarRawSubsetRule) Description() string {
	return "var identifiers must be a subset of raw.var identifiers when a raw section exists"
}

// Severity returns the rule severity.
func (r *VarRawSubsetRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *VarRawSubsetRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	rawVar, err := view.RawVar()
	if err != nil {
		return nil // no raw section, nothing to compare against
	}
	varTable, err := view.Var()
	if err != nil {
		return nil // missing var is the unique-var-index rule's finding
	}

	rawIDs := make(map[string]struct{}, len(rawVar.Index))
	for _, id := range rawVar.Index {
		rawIDs[catalog.StripVersion(id)] = struct{}{}
	}

	var violations []capval.Violation
	for i, id := range varTable.Index {
		if _, ok := rawIDs[catalog.StripVersion(id)]; !ok {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("var identifier %q is not present in raw.var", id)).
				At(fmt.Sprintf("var.index[%d]", i)).
				Build())
		}
	}
	return violations
}
