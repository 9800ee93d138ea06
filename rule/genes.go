package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// organismColumn is the obs column declaring the dataset organism.
const organismColumn = "organism"

// GeneIdentifiersRule checks that every feature identifier is a known
// ENSEMBL gene for the declared organism.
//
// The organism is validated against the supported enumeration first; an
// unknown organism short-circuits the membership check and yields exactly
// one violation rather than one per gene. Datasets declaring more than
// one organism are checked against the multi-species union catalog.
type GeneIdentifiersRule struct {
	override string
}

// NewGeneIdentifiersRule creates the gene-identifiers rule. A non-empty
// override forces the organism instead of reading obs.organism.
func NewGeneIdentifiersRule(override string) *GeneIdentifiersRule {
	return &GeneIdentifiersRule{override: override}
}

// Name returns the rule name.
func (r *GeneIdentifiersRule) Name() string { return "gene-identifiers" }

// Description returns the rule description.
func (r *GeneIdentifiersRule) Description() string {
	return "feature identifiers must be ENSEMBL genes known for the declared organism"
}

// Severity returns the rule severity.
func (r *GeneIdentifiersRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *GeneIdentifiersRule) Check(_ context.Context, view *anndata.FileView, catalogs catalog.Set) []capval.Violation {
	varTable, err := view.Var()
	if err != nil {
		return nil // missing var is the unique-var-index rule's finding
	}

	if !varTable.IndexDtype.StringLike() || len(varTable.Index) == 0 {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message("gene identifiers are missing: var index must hold ENSEMBL terms").
				At("var.index").
				Build(),
		}
	}

	organism, violation := r.resolveOrganism(view)
	if violation != nil {
		return []capval.Violation{*violation}
	}
	if organism == "" {
		// No organism declared at all; the required-obs-columns rule
		// reports the missing column.
		return nil
	}

	cat, ok := catalogs.For(organism)
	if !ok {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("reference catalog for %s is not loaded", organism)).
				At("var.index").
				Build(),
		}
	}

	var violations []capval.Violation
	for i, id := range varTable.Index {
		if !cat.Contains(id) {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("gene identifier %q is not a known ENSEMBL gene for %s", id, organism)).
				At(fmt.Sprintf("var.index[%d]", i)).
				Build())
		}
	}
	return violations
}

// resolveOrganism determines the organism to check against. It returns
// an empty organism with no violation when the file declares none, and a
// single unknown-organism violation when the declaration is not in the
// supported enumeration.
func (r *GeneIdentifiersRule) resolveOrganism(view *anndata.FileView) (catalog.Organism, *capval.Violation) {
	if r.override != "" {
		organism, ok := catalog.Parse(r.override)
		if !ok {
			v := capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("unknown organism %q: supported organisms are %s and %s", r.override, catalog.HomoSapiens, catalog.MusMusculus)).
				At(organismColumn).
				Build()
			return "", &v
		}
		return organism, nil
	}

	obs, err := view.Obs()
	if err != nil {
		return "", nil
	}
	col, ok := obs.Column(organismColumn)
	if !ok || !col.Dtype.StringLike() {
		return "", nil
	}

	// Distinct declared organisms, in row order.
	var distinct []string
	seen := make(map[string]bool)
	for _, v := range col.Strings {
		if isBlank(v) || seen[v] {
			continue
		}
		seen[v] = true
		distinct = append(distinct, v)
	}

	switch len(distinct) {
	case 0:
		return "", nil
	case 1:
		organism, ok := catalog.Parse(distinct[0])
		if !ok {
			v := capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("unknown organism %q: supported organisms are %s and %s", distinct[0], catalog.HomoSapiens, catalog.MusMusculus)).
				At("obs." + organismColumn).
				Build()
			return "", &v
		}
		return organism, nil
	default:
		return catalog.MultiSpecies, nil
	}
}
