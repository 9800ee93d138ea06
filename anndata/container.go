package anndata

import "errors"

// Dtype is the declared element type of a stored field.
type Dtype string

// Supported element types.
const (
	DtypeString      Dtype = "string"
	DtypeCategorical Dtype = "categorical"
	DtypeInt         Dtype = "int"
	DtypeFloat       Dtype = "float"
	DtypeBool        Dtype = "bool"
	DtypeUnknown     Dtype = "unknown"
)

// Numeric returns true for int and float dtypes.
func (d Dtype) Numeric() bool {
	return d == DtypeInt || d == DtypeFloat
}

// StringLike returns true for string and categorical dtypes.
func (d Dtype) StringLike() bool {
	return d == DtypeString || d == DtypeCategorical
}

// Standard matrix section names.
const (
	MatrixX    = "X"
	MatrixRawX = "raw/X"
)

// ErrNoSection is returned by Container accessors for sections the file
// does not contain.
var ErrNoSection = errors.New("anndata: section not present")

// Column is one annotation column. Exactly one of the value slices is
// populated, matching the dtype.
type Column struct {
	Name  string
	Dtype Dtype

	// Strings holds values for string and categorical columns
	Strings []string

	// Floats holds values for int and float columns
	Floats []float64

	// Bools holds values for bool columns
	Bools []bool
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch {
	case c.Strings != nil:
		return len(c.Strings)
	case c.Floats != nil:
		return len(c.Floats)
	case c.Bools != nil:
		return len(c.Bools)
	default:
		return 0
	}
}

// Table is a fully materialized annotation table (obs or var). Annotation
// tables are bounded in size, so holding them in memory is acceptable;
// only the expression matrix requires chunked access.
type Table struct {
	// Index holds the axis labels
	Index []string

	// IndexDtype is the declared element type of the index
	IndexDtype Dtype

	order   []string
	columns map[string]*Column
}

// NewTable creates a table with the given index and a string index dtype.
func NewTable(index []string) *Table {
	return &Table{
		Index:      index,
		IndexDtype: DtypeString,
		columns:    make(map[string]*Column),
	}
}

// AddColumn appends a column, keeping insertion order. A column with a
// duplicate name replaces the previous one in place.
func (t *Table) AddColumn(c *Column) {
	if _, ok := t.columns[c.Name]; !ok {
		t.order = append(t.order, c.Name)
	}
	t.columns[c.Name] = c
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columns[name]
	return c, ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// NRows returns the number of rows (the index length).
func (t *Table) NRows() int {
	return len(t.Index)
}

// ArraySpec describes an array-valued annotation (e.g. an obsm embedding)
// without materializing it.
type ArraySpec struct {
	Name  string
	Rows  int
	Cols  int
	Dtype Dtype
}

// Matrix is a 2D numeric section readable in row blocks.
type Matrix interface {
	// Dims returns the matrix dimensions.
	Dims() (rows, cols int)

	// ReadRows reads up to rows full rows starting at row offset into dst
	// in row-major order and returns the number of rows read. dst must
	// hold at least rows*cols values.
	ReadRows(dst []float64, offset, rows int) (int, error)
}

// Container is the capability boundary to one backing file. Small sections
// are materialized; the expression matrix is only reachable through Matrix
// block reads. Implementations are not required to be safe for concurrent
// use: a Container is owned by one FileView for one run.
type Container interface {
	// Shape returns (n_obs, n_var) of the main matrix axes.
	Shape() (nObs, nVar int)

	// Dtypes maps field names ("X", "obs.assay", "var._index", ...) to
	// their declared element types.
	Dtypes() map[string]Dtype

	// Obs returns the row (observation) annotation table.
	Obs() (*Table, error)

	// Var returns the column (feature) annotation table.
	Var() (*Table, error)

	// RawVar returns the raw feature table, or ErrNoSection if the file
	// has no raw section.
	RawVar() (*Table, error)

	// Uns returns the unstructured key-value metadata block.
	Uns() (map[string]any, error)

	// Embeddings returns the obsm array specs.
	Embeddings() ([]ArraySpec, error)

	// Matrix returns the named matrix section (MatrixX, MatrixRawX), or
	// ErrNoSection if absent.
	Matrix(name string) (Matrix, error)

	// Close releases file handles. Idempotent.
	Close() error
}
