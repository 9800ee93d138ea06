package rule

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cellannotation/capval"
	"github.com/cellannotation/capval/anndata"
	"github.com/cellannotation/capval/catalog"
)

// CountMatrixRule checks that the file carries a raw count matrix (raw/X
// preferred, X otherwise) whose values are non-negative integers. Only the
// first checkRows rows are inspected, read in bounded chunks.
type CountMatrixRule struct {
	checkRows int
	chunkRows int
}

// NewCountMatrixRule creates the count-matrix rule.
func NewCountMatrixRule(checkRows, chunkRows int) *CountMatrixRule {
	if checkRows <= 0 {
		checkRows = 100
	}
	if chunkRows <= 0 {
		chunkRows = 1000
	}
	return &CountMatrixRule{checkRows: checkRows, chunkRows: chunkRows}
}

// Name returns the rule name.
func (r *CountMatrixRule) Name() string { return "count-matrix" }

// Description returns the rule description.
func (r *CountMatrixRule) Description() string {
	return "raw count matrix must be present in raw.X or X and hold non-negative integers"
}

// Severity returns the rule severity.
func (r *CountMatrixRule) Severity() capval.Severity { return capval.SeverityError }

// Check implements Rule.
func (r *CountMatrixRule) Check(ctx context.Context, view *anndata.FileView, _ catalog.Set) []capval.Violation {
	name, m, err := view.CountMatrix()
	if err != nil {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message("raw data matrix is missing: expected a count matrix in raw.X or X").
				At(anndata.MatrixX).
				Build(),
		}
	}

	rows, _ := m.Dims()
	limit := rows
	if r.checkRows < limit {
		limit = r.checkRows
	}

	chunkRows := r.chunkRows
	if chunkRows > limit && limit > 0 {
		chunkRows = limit
	}

	it, err := view.MatrixChunks(name, chunkRows)
	if err != nil {
		return []capval.Violation{
			capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("count matrix %s could not be read: %v", name, err)).
				At(name).
				Build(),
		}
	}

	var violations []capval.Violation
	sawNegative := false
	sawNonInteger := false

	for it.Next() {
		chunk := it.Chunk()

		checkRows := chunk.Rows
		if chunk.Offset+checkRows > limit {
			checkRows = limit - chunk.Offset
		}
		data := chunk.Data[:checkRows*chunk.Cols]

		// Cheap whole-chunk screen before locating individual offenders.
		if !sawNegative && len(data) > 0 && floats.Min(data) < 0 {
			row, col, v := locate(data, chunk, func(v float64) bool { return v < 0 })
			violations = append(violations, capval.ErrorViolation(r.Name()).
				Message(fmt.Sprintf("count matrix contains negative value %g", v)).
				At(fmt.Sprintf("%s[%d,%d]", name, row, col)).
				Build())
			sawNegative = true
		}

		if !sawNonInteger {
			if row, col, v := locate(data, chunk, isNonInteger); row >= 0 {
				violations = append(violations, capval.ErrorViolation(r.Name()).
					Message(fmt.Sprintf("count matrix contains non-integer value %g", v)).
					At(fmt.Sprintf("%s[%d,%d]", name, row, col)).
					Build())
				sawNonInteger = true
			}
		}

		if sawNegative && sawNonInteger {
			break
		}
		// The window is covered; do not read another block.
		if chunk.Offset+chunk.Rows >= limit {
			break
		}
	}

	if err := it.Err(); err != nil {
		violations = append(violations, capval.ErrorViolation(r.Name()).
			Message(fmt.Sprintf("count matrix %s could not be read: %v", name, err)).
			At(name).
			Build())
	}
	return violations
}

func isNonInteger(v float64) bool {
	return !math.IsNaN(v) && v != math.Trunc(v)
}

// locate finds the first value matching pred and returns its absolute row,
// column and value. Row is -1 when nothing matches.
func locate(data []float64, chunk *anndata.Chunk, pred func(float64) bool) (row, col int, v float64) {
	for i, val := range data {
		if pred(val) {
			return chunk.Offset + i/chunk.Cols, i % chunk.Cols, val
		}
	}
	return -1, -1, 0
}
