package rule

import (
	"context"
	"fmt"
	"math"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// EmptyRowsRule flags observations whose expression row is entirely zero
// or missing. The matrix is scanned in bounded chunks; only the current
// chunk is live at any time.
type EmptyRowsRule struct {
	chunkRows int
}

// NewEmptyRowsRule creates the empty-rows rule.
func NewEmptyRowsRule(chunkRows int) *EmptyRowsRule {
	if chunkRows <= 0 {
		chunkRows = 1000
	}
	return &EmptyRowsRule{chunkRows: chunkRows}
}

// Name returns the rule name.
func (r *EmptyRowsRule) Name() string { return "empty-rows" }

// Description returns the rule description.
func (r *EmptyRowsRule) Description() string {
	return "no observation row of the expression matrix may be entirely zero or missing"
}

// Severity returns the rule severity.
func (r *EmptyRowsRule) Severity() capval.Severity { return capval.SeverityWarning }

// Check implements Rule.
func (r *EmptyRowsRule) Check(ctx context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	if !view.HasMatrix(anndata.MatrixX) {
		return nil // missing matrix is the count-matrix rule's finding
	}
	it, err := view.MatrixChunks(anndata.MatrixX, r.chunkRows)
	if err != nil {
		return nil
	}

	labels := obsLabels(view)

	var violations []capval.Violation
	for it.Next() {
		if ctx.Err() != nil {
			return violations
		}
		chunk := it.Chunk()
		for i := 0; i < chunk.Rows; i++ {
			if !allEmpty(chunk.Row(i)) {
				continue
			}
			row := chunk.Offset + i
			msg := fmt.Sprintf("matrix row %d is entirely empty", row)
			if row < len(labels) {
				msg = fmt.Sprintf("matrix row %d (%q) is entirely empty", row, labels[row])
			}
			violations = append(violations, capval.WarningViolation(r.Name()).
				Message(msg).
				At(fmt.Sprintf("X[%d,:]", row)).
				Build())
		}
	}
	return violations
}

// EmptyColumnsRule flags features whose expression column is entirely
// zero or missing. The scan is chunked over rows with one accumulator of
// n_var flags, so memory stays bounded by chunk size plus column count.
type EmptyColumnsRule struct {
	chunkRows int
}

// NewEmptyColumnsRule creates the empty-columns rule.
func NewEmptyColumnsRule(chunkRows int) *EmptyColumnsRule {
	if chunkRows <= 0 {
		chunkRows = 1000
	}
	return &EmptyColumnsRule{chunkRows: chunkRows}
}

// Name returns the rule name.
func (r *EmptyColumnsRule) Name() string { return "empty-columns" }

// Description returns the rule description.
func (r *EmptyColumnsRule) Description() string {
	return "no feature column of the expression matrix may be entirely zero or missing"
}

// Severity returns the rule severity.
func (r *EmptyColumnsRule) Severity() capval.Severity { return capval.SeverityWarning }

// Check implements Rule.
func (r *EmptyColumnsRule) Check(ctx context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	if !view.HasMatrix(anndata.MatrixX) {
		return nil
	}
	it, err := view.MatrixChunks(anndata.MatrixX, r.chunkRows)
	if err != nil {
		return nil
	}

	_, nVar := view.Shape()
	nonEmpty := make([]bool, nVar)
	sawRows := false

	for it.Next() {
		if ctx.Err() != nil {
			return nil
		}
		chunk := it.Chunk()
		sawRows = true
		for i := 0; i < chunk.Rows; i++ {
			row := chunk.Row(i)
			for c, v := range row {
				if c < nVar && !isEmptyValue(v) {
					nonEmpty[c] = true
				}
			}
		}
	}
	if !sawRows {
		return nil // zero-row matrix has no meaningful columns to flag
	}

	varTable, verr := view.Var()

	var violations []capval.Violation
	for c, ok := range nonEmpty {
		if ok {
			continue
		}
		msg := fmt.Sprintf("matrix column %d is entirely empty", c)
		if verr == nil && c < len(varTable.Index) {
			msg = fmt.Sprintf("matrix column %d (%q) is entirely empty", c, varTable.Index[c])
		}
		violations = append(violations, capval.WarningViolation(r.Name()).
			Message(msg).
			At(fmt.Sprintf("X[:,%d]", c)).
			Build())
	}
	return violations
}

// isEmptyValue treats zeros and NaN (missing) as empty.
func isEmptyValue(v float64) bool {
	return v == 0 || math.IsNaN(v)
}

func allEmpty(row []float64) bool {
	for _, v := range row {
		if !isEmptyValue(v) {
			return false
		}
	}
	return true
}

func obsLabels(view *anndata.FileView) []string {
	obs, err := view.Obs()
	if err != nil {
		return nil
	}
	return obs.Index
}
