package rule

import (
	"context"
	"fmt"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// RequiredObsColumnsRule checks that every mandatory row-annotation column
// exists and carries a non-blank value in every row.
type RequiredObsColumnsRule struct {
	columns []string
}

// NewRequiredObsColumnsRule creates the required-obs-columns rule.
func NewRequiredObsColumnsRule(columns []string) *RequiredObsColumnsRule {
	return &RequiredObsColumnsRule{columns: columns}
}

// Name returns the rule name.
func (r *RequiredObsColumnsRule) Name() string { return "required-obs-columns" }

// Description returns the rule description.
func (r *RequiredObsColumnsRule) Description() string {
	return fmt.Sprintf("row annotations must contain the columns %v with non-blank values", r.columns)
}

// Severity returns the rule severity.
func (r *RequiredObsColumnsRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *RequiredObsColumnsRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	obs, err := view.Obs()
	if err != nil {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message("row annotation table (obs) is missing").
				At("obs").
				Build(),
		}
	}

	var violations []capval.Violation
	for _, name := range r.columns {
		col, ok := obs.Column(name)
		if !ok {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("required obs column %q is missing", name)).
				At("obs."+name).
				Build())
			continue
		}

		if !col.Dtype.StringLike() {
			// Value content is checked for string-like columns only; the
			// dtype itself is the field-dtypes rule's concern.
			continue
		}
		for i, v := range col.Strings {
			if isBlank(v) {
				violations = append(violations, capval.ErrorViolation(r.Name()).
					Message(fmt.Sprintf("required obs column %q has a blank value at row %d", name, i)).
					At(fmt.Sprintf("obs.%s[%d]", name, i)).
					Build())
				break
			}
		}
	}
	return violations
}

// RequiredUnsKeysRule checks that every mandatory unstructured metadata
// key exists and, for string values, is non-blank.
type RequiredUnsKeysRule struct {
	keys []string
}

// NewRequiredUnsKeysRule creates the required-uns-keys rule.
func NewRequiredUnsKeysRule(keys []string) *RequiredUnsKeysRule {
	return &RequiredUnsKeysRule{keys: keys}
}

// Name returns the rule name.
func (r *RequiredUnsKeysRule) Name() string { return "required-uns-keys" }

// Description returns the rule description.
func (r *RequiredUnsKeysRule) Description() string {
	return fmt.Sprintf("unstructured metadata must contain the keys %v", r.keys)
}

// Severity returns the rule severity.
func (r *RequiredUnsKeysRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *RequiredUnsKeysRule) Check(_ context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	uns, err := view.Uns()
	if err != nil || uns == nil {
		uns = map[string]any{}
	}

	var violations []capval.Violation
	for _, key := range r.keys {
		v, ok := uns[key]
		if !ok {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("required uns key %q is missing", key)).
				At("uns."+key).
				Build())
			continue
		}
		if s, isString := v.(string); isString && isBlank(s) {
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("required uns key %q is blank", key)).
				At("uns."+key).
				Build())
		}
	}
	return violations
}
